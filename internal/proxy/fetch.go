package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	maxDocumentBytes     = 512 << 10
	maxDocumentRedirects = 5
)

// ErrForeignDocument is returned for document paths that name another host.
var ErrForeignDocument = errors.New("proxy: document path must stay on the upstream host")

// FetchDocument requests path from the upstream and returns at most the first
// 512 KiB of the body, enough to cover the document head.
func (p *Proxy) FetchDocument(ctx context.Context, path string) ([]byte, error) {
	ref, err := p.documentURL(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("proxy: build document request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Encoding", "identity")

	client := &http.Client{
		Transport: p.rp.Transport,
		CheckRedirect: func(next *http.Request, via []*http.Request) error {
			if next.URL.Host != p.target.Host {
				return ErrForeignDocument
			}
			if len(via) >= maxDocumentRedirects {
				return fmt.Errorf("proxy: stopped after %d redirects", len(via))
			}
			return nil
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy: fetch document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("proxy: fetch document: upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("proxy: read document: %w", err)
	}
	return body, nil
}

// documentURL keeps the upstream scheme and host and takes only the path and
// query from path.
func (p *Proxy) documentURL(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("proxy: parse document path: %w", err)
	}
	if ref.Scheme != "" || ref.Host != "" || ref.User != nil || ref.Opaque != "" {
		return nil, ErrForeignDocument
	}
	target := *p.target
	target.Path = "/" + strings.TrimLeft(ref.Path, "/")
	target.RawPath = ""
	target.RawQuery = ref.RawQuery
	target.Fragment = ""
	return &target, nil
}
