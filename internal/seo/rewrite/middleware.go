package rewrite

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
)

const defaultMaxCapture = 8 << 20

// OverrideResolver resolves the override set for an item and locale.
type OverrideResolver interface {
	Resolve(ctx context.Context, item seo.Item, locale string) seo.OverrideSet
}

// Options wires the middleware to request classification, item resolution
// and override lookup.
type Options struct {
	// Classify flags the request contexts the guard declines.
	Classify func(r *http.Request) RequestKind
	// Item identifies the rendered content item from the response headers.
	Item func(r *http.Request, header http.Header) (seo.Item, bool)
	// Locale returns the request locale.
	Locale   func(r *http.Request) string
	Resolver OverrideResolver

	MaxCaptureBytes int
	Metrics         *Metrics
	Logger          *zap.Logger
}

// Middleware buffers qualifying HTML responses and rewrites them before they
// reach the client. Everything else streams through untouched.
type Middleware struct {
	opts Options
}

// NewMiddleware builds the middleware.
func NewMiddleware(opts Options) *Middleware {
	if opts.MaxCaptureBytes <= 0 {
		opts.MaxCaptureBytes = defaultMaxCapture
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Middleware{opts: opts}
}

// Handler wraps next.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.opts.Classify != nil {
			if kind := m.opts.Classify(r); !Guard(kind) {
				m.opts.Metrics.outcome(OutcomeGuarded)
				next.ServeHTTP(w, r)
				return
			}
		}

		cw := &captureWriter{ResponseWriter: w, req: r, m: m}
		next.ServeHTTP(cw, r)
		cw.finish()
	})
}

// Eligible reports whether the middleware would buffer this request.
func (m *Middleware) Eligible(r *http.Request) bool {
	if m.opts.Classify == nil {
		return true
	}
	return Guard(m.opts.Classify(r))
}

func (m *Middleware) overrides(r *http.Request, header http.Header) (seo.OverrideSet, bool) {
	if m.opts.Item == nil || m.opts.Resolver == nil || m.opts.Locale == nil {
		return seo.OverrideSet{}, false
	}
	item, ok := m.opts.Item(r, header)
	if !ok {
		return seo.OverrideSet{}, false
	}
	set := m.opts.Resolver.Resolve(r.Context(), item, m.opts.Locale(r))
	if set.IsEmpty() {
		return seo.OverrideSet{}, false
	}
	return set, true
}

type captureWriter struct {
	http.ResponseWriter
	req *http.Request
	m   *Middleware

	decided   bool
	capturing bool
	status    int
	set       seo.OverrideSet
	buf       bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	// informational responses such as 103 Early Hints precede the real one
	if status >= 100 && status < 200 && status != http.StatusSwitchingProtocols {
		c.ResponseWriter.WriteHeader(status)
		return
	}
	if c.decided {
		if !c.capturing {
			c.ResponseWriter.WriteHeader(status)
		}
		return
	}
	c.decided = true
	c.status = status

	// HEAD carries no body to rewrite and its Content-Length must match GET
	if status == http.StatusOK && c.req.Method != http.MethodHead && isHTML(c.Header()) && identityEncoded(c.Header()) {
		if set, ok := c.m.overrides(c.req, c.Header()); ok {
			c.capturing = true
			c.set = set
			return
		}
	}
	c.m.opts.Metrics.outcome(OutcomeDeclined)
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if !c.decided {
		c.WriteHeader(http.StatusOK)
	}
	if !c.capturing {
		return c.ResponseWriter.Write(p)
	}
	if c.buf.Len()+len(p) > c.m.opts.MaxCaptureBytes {
		c.spill()
		return c.ResponseWriter.Write(p)
	}
	return c.buf.Write(p)
}

// Flush is a no-op while capturing; the rewritten body is flushed once at the end.
func (c *captureWriter) Flush() {
	if c.capturing {
		return
	}
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (c *captureWriter) Unwrap() http.ResponseWriter { return c.ResponseWriter }

// spill abandons the capture and sends what was buffered so far unmodified.
func (c *captureWriter) spill() {
	c.capturing = false
	c.m.opts.Metrics.outcome(OutcomeOverflow)
	requestctx.LoggerOr(c.req.Context(), c.m.opts.Logger).Debug("rewrite capture limit exceeded",
		zap.Int("limit", c.m.opts.MaxCaptureBytes),
	)
	c.ResponseWriter.WriteHeader(c.status)
	_, _ = c.ResponseWriter.Write(c.buf.Bytes())
	c.buf.Reset()
}

func (c *captureWriter) finish() {
	if !c.capturing {
		return
	}
	c.capturing = false

	started := time.Now()
	out, fields := Rewrite(c.buf.String(), c.set)
	c.m.opts.Metrics.observe(started, fields)
	if len(fields) > 0 {
		c.m.opts.Metrics.outcome(OutcomeRewritten)
	} else {
		c.m.opts.Metrics.outcome(OutcomeUnchanged)
	}

	header := c.Header()
	if len(fields) > 0 {
		header.Del("ETag")
	}
	header.Set("Content-Length", strconv.Itoa(len(out)))
	c.ResponseWriter.WriteHeader(c.status)
	if _, err := c.ResponseWriter.Write([]byte(out)); err != nil {
		requestctx.LoggerOr(c.req.Context(), c.m.opts.Logger).Debug("rewrite flush failed", zap.Error(err))
		return
	}
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func isHTML(h http.Header) bool {
	ct := h.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "text/html"
}

func identityEncoded(h http.Header) bool {
	enc := strings.TrimSpace(h.Get("Content-Encoding"))
	return enc == "" || strings.EqualFold(enc, "identity")
}
