package proxy

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
)

var restItemPath = regexp.MustCompile(`/wp-json/wp/v2/(?:posts|pages)/(\d+)/?$`)

// ItemResolver identifies the singular content item an upstream response renders.
type ItemResolver struct {
	header string
}

// NewItemResolver reads the item id from header before falling back to Link headers.
func NewItemResolver(header string) *ItemResolver {
	return &ItemResolver{header: strings.TrimSpace(header)}
}

// Resolve returns the item for the response headers h. Sources, in order:
// the configured item header, a rel=shortlink Link (?p= or ?page_id=), and
// the REST alternate Link of a post or page.
func (i *ItemResolver) Resolve(_ *http.Request, h http.Header) (seo.Item, bool) {
	if i.header != "" {
		if id := strings.TrimSpace(h.Get(i.header)); validID(id) {
			return seo.Item{ID: id, Singular: true}, true
		}
	}
	var alternate string
	for _, link := range parseLinks(h.Values("Link")) {
		switch {
		case link.hasRel("shortlink"):
			if id := shortlinkID(link.target); id != "" {
				return seo.Item{ID: id, Singular: true}, true
			}
		case link.hasRel("alternate") && alternate == "":
			if m := restItemPath.FindStringSubmatch(link.target); m != nil {
				alternate = m[1]
			}
		}
	}
	if alternate != "" {
		return seo.Item{ID: alternate, Singular: true}, true
	}
	return seo.Item{}, false
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseUint(id, 10, 64)
	return err == nil && n > 0
}

func shortlinkID(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range []string{"p", "page_id"} {
		if id := q.Get(key); validID(id) {
			return id
		}
	}
	return ""
}

type link struct {
	target string
	rels   []string
}

func (l link) hasRel(rel string) bool {
	for _, r := range l.rels {
		if strings.EqualFold(r, rel) {
			return true
		}
	}
	return false
}

// parseLinks reads RFC 8288 Link header values: <target>; rel="a b"; ...
func parseLinks(values []string) []link {
	var out []link
	for _, value := range values {
		for _, part := range splitLinks(value) {
			part = strings.TrimSpace(part)
			if !strings.HasPrefix(part, "<") {
				continue
			}
			end := strings.Index(part, ">")
			if end < 0 {
				continue
			}
			l := link{target: strings.TrimSpace(part[1:end])}
			for _, param := range strings.Split(part[end+1:], ";") {
				name, val, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(name), "rel") {
					continue
				}
				l.rels = append(l.rels, strings.Fields(strings.Trim(strings.TrimSpace(val), `"`))...)
			}
			out = append(out, l)
		}
	}
	return out
}

// splitLinks splits on commas outside angle brackets.
func splitLinks(value string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, value[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, value[start:])
}
