package extension

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// signatures map lower-cased fragments found in extension banners and
// generator tags to the marker the extension would register on the host.
var signatures = []struct {
	fragment string
	marker   string
}{
	{fragment: "yoast seo", marker: MarkerYoast},
	{fragment: "rank math", marker: MarkerRankMath},
	{fragment: "rankmath", marker: MarkerRankMath},
	{fragment: "all in one seo", marker: MarkerAIOSEOVersion},
	{fragment: "aioseo", marker: MarkerAIOSEOVersion},
}

// DocumentProbe inspects the head of a rendered document for the HTML
// comments and generator meta tags SEO extensions print, and reports the
// matching markers. Scanning stops at </head> or <body>.
func DocumentProbe(doc []byte) Markers {
	found := Markers{}
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return found
		case html.CommentToken:
			match(found, string(z.Text()))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch atom.Lookup(name) {
			case atom.Body:
				return found
			case atom.Meta:
				if hasAttr {
					if content, ok := generatorContent(z); ok {
						match(found, content)
					}
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Head {
				return found
			}
		}
	}
}

func generatorContent(z *html.Tokenizer) (string, bool) {
	var name, content string
	for more := true; more; {
		var key, val []byte
		key, val, more = z.TagAttr()
		switch strings.ToLower(string(key)) {
		case "name":
			name = string(val)
		case "content":
			content = string(val)
		}
	}
	if !strings.EqualFold(strings.TrimSpace(name), "generator") {
		return "", false
	}
	return content, true
}

func match(found Markers, text string) {
	lower := strings.ToLower(text)
	for _, sig := range signatures {
		if strings.Contains(lower, sig.fragment) {
			found[sig.marker] = struct{}{}
		}
	}
}
