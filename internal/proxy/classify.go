package proxy

import (
	"net/http"
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/seo/rewrite"
)

// Classifier flags requests whose responses must never be rewritten.
type Classifier struct {
	adminPrefixes []string
}

// NewClassifier returns a classifier treating adminPrefixes as the host's back office.
func NewClassifier(adminPrefixes []string) *Classifier {
	prefixes := make([]string, 0, len(adminPrefixes))
	for _, p := range adminPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, strings.ToLower(p))
		}
	}
	return &Classifier{adminPrefixes: prefixes}
}

// Classify inspects the path and query of r.
func (c *Classifier) Classify(r *http.Request) rewrite.RequestKind {
	path := strings.ToLower(r.URL.Path)
	query := r.URL.Query()

	var kind rewrite.RequestKind
	for _, prefix := range c.adminPrefixes {
		if strings.HasPrefix(path, prefix) {
			kind.Admin = true
			break
		}
	}
	kind.Ajax = strings.HasSuffix(path, "/admin-ajax.php")
	kind.Cron = strings.HasSuffix(path, "/wp-cron.php")
	kind.REST = path == "/wp-json" || strings.HasPrefix(path, "/wp-json/") || query.Has("rest_route")
	kind.XMLRPC = strings.HasSuffix(path, "/xmlrpc.php")
	kind.Feed = query.Has("feed") || hasSegment(path, "feed")
	kind.Robots = path == "/robots.txt"
	return kind
}

func hasSegment(path, segment string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
