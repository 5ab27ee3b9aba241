package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giacomo1215/GGUniversalSEO/internal/seo/rewrite"
)

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{"/wp-admin", "/wp-login.php", " "})

	cases := []struct {
		target string
		want   rewrite.RequestKind
	}{
		{target: "/", want: rewrite.RequestKind{}},
		{target: "/it/chi-siamo/", want: rewrite.RequestKind{}},
		{target: "/feedback/", want: rewrite.RequestKind{}},
		{target: "/wp-admin/post.php?post=42", want: rewrite.RequestKind{Admin: true}},
		{target: "/WP-LOGIN.php", want: rewrite.RequestKind{Admin: true}},
		{target: "/wp-admin/admin-ajax.php", want: rewrite.RequestKind{Admin: true, Ajax: true}},
		{target: "/wp-cron.php?doing_wp_cron=1", want: rewrite.RequestKind{Cron: true}},
		{target: "/wp-json/wp/v2/pages/42", want: rewrite.RequestKind{REST: true}},
		{target: "/?rest_route=/wp/v2/pages", want: rewrite.RequestKind{REST: true}},
		{target: "/xmlrpc.php", want: rewrite.RequestKind{XMLRPC: true}},
		{target: "/feed/", want: rewrite.RequestKind{Feed: true}},
		{target: "/category/news/feed/atom/", want: rewrite.RequestKind{Feed: true}},
		{target: "/?feed=rss2", want: rewrite.RequestKind{Feed: true}},
		{target: "/robots.txt", want: rewrite.RequestKind{Robots: true}},
	}
	for _, tc := range cases {
		got := c.Classify(httptest.NewRequest(http.MethodGet, tc.target, nil))
		assert.Equal(t, tc.want, got, tc.target)
	}
}
