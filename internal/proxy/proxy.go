// Package proxy forwards page requests to the content host and identifies
// what each response renders.
package proxy

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/config"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/httpx"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
)

// Proxy is the reverse proxy to the upstream content host.
type Proxy struct {
	target   *url.URL
	rp       *httputil.ReverseProxy
	eligible func(*http.Request) bool
	logger   *zap.Logger
}

// Option customises the proxy.
type Option func(*Proxy)

// WithEligibility marks requests whose responses may be rewritten. The
// upstream is asked for an uncompressed body for those requests.
func WithEligibility(fn func(*http.Request) bool) Option {
	return func(p *Proxy) {
		p.eligible = fn
	}
}

// WithTransport overrides the upstream transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Proxy) {
		if rt != nil {
			p.rp.Transport = rt
		}
	}
}

// New builds a proxy for cfg.URL.
func New(cfg config.UpstreamConfig, logger *zap.Logger, opts ...Option) (*Proxy, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("proxy: parse upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("proxy: upstream url must be absolute")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Proxy{target: target, logger: logger}
	p.rp = &httputil.ReverseProxy{
		Rewrite:      p.rewrite,
		Transport:    newTransport(cfg.Timeout),
		ErrorHandler: p.handleError,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.rp.ServeHTTP(w, r)
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.SetURL(p.target)
	pr.SetXForwarded()
	// keep the public host so the upstream renders absolute URLs for it
	pr.Out.Host = pr.In.Host
	if p.eligible != nil && p.eligible(pr.In) {
		// an absent header would let the transport negotiate gzip on its own
		pr.Out.Header.Set("Accept-Encoding", "identity")
	}
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.LoggerOr(r.Context(), p.logger).Warn("upstream request failed",
		zap.String("upstream", p.target.Host),
		zap.Error(err),
	)
	status := http.StatusBadGateway
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		status = http.StatusGatewayTimeout
	}
	httpx.WriteError(r.Context(), w, httpx.NewError("upstream_unavailable", "upstream request failed", status))
}

func newTransport(timeout time.Duration) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
	}
	return transport
}
