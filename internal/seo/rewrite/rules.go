// Package rewrite is the output safety net: it substitutes SEO tags in the
// fully rendered document with targeted, first-match regular expressions.
package rewrite

import (
	"regexp"
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
)

var (
	titlePattern     = regexp.MustCompile(`(?is)<title\b[^>]*>.*?</title>`)
	headClosePattern = regexp.MustCompile(`(?i)</head>`)
	canonicalPattern = regexp.MustCompile(`(?i)<link\b[^>]*\brel\s*=\s*["']canonical["'][^>]*/?>`)
	langPattern      = regexp.MustCompile(`(?i)(<html\b[^>]*)\blang\s*=\s*["'][^"']*["']`)

	namePatterns     = map[string]*regexp.Regexp{}
	propertyPatterns = map[string]*regexp.Regexp{}
)

func init() {
	for _, name := range []string{"description", "twitter:title", "twitter:description", "twitter:image"} {
		namePatterns[name] = attributePattern("name", name)
	}
	for _, prop := range []string{"og:title", "og:description", "og:image", "og:locale", "og:url"} {
		propertyPatterns[prop] = attributePattern("property", prop)
	}
}

func attributePattern(attr, value string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<meta\b[^>]*\b` + attr + `\s*=\s*["']` + regexp.QuoteMeta(value) + `["'][^>]*/?>`)
}

// Process rewrites doc with the overrides in set. Documents without a
// closing head tag and empty sets are returned unchanged.
func Process(doc string, set seo.OverrideSet) string {
	out, _ := Rewrite(doc, set)
	return out
}

// Rewrite is Process that also reports which tags were changed.
func Rewrite(doc string, set seo.OverrideSet) (string, []string) {
	if doc == "" || set.IsEmpty() || !headClosePattern.MatchString(doc) {
		return doc, nil
	}
	return applyRules(doc, set)
}

// applyRules runs every rule in order: title, og/twitter title, description,
// og/twitter description, og/twitter image, og:locale with the html lang
// attribute, then canonical with og:url. Each rule replaces the first match
// only; the description is the one tag injected when missing.
func applyRules(doc string, set seo.OverrideSet) (string, []string) {
	r := &run{doc: doc}

	if set.Title != nil {
		r.replace("title", titlePattern, "<title>"+seo.EscapeHTML(*set.Title)+"</title>")
	}
	if set.OGTitle != nil {
		r.property("og:title", *set.OGTitle)
		r.name("twitter:title", *set.OGTitle, false)
	}
	if set.Description != nil {
		r.name("description", *set.Description, true)
	}
	if set.OGDescription != nil {
		r.property("og:description", *set.OGDescription)
		r.name("twitter:description", *set.OGDescription, false)
	}
	if set.OGImage != nil {
		r.property("og:image", *set.OGImage)
		r.name("twitter:image", *set.OGImage, false)
	}
	if set.Locale != "" {
		r.property("og:locale", locale.ToOG(set.Locale))
		out, ok := replaceLang(r.doc, locale.LangAttr(set.Locale))
		r.record("html:lang", out, ok)
	}
	if set.CanonicalURL != nil {
		tag := `<link rel="canonical" href="` + seo.EscapeURL(*set.CanonicalURL) + `" />`
		r.replace("canonical", canonicalPattern, tag)
		r.property("og:url", *set.CanonicalURL)
	}
	return r.doc, r.changed
}

type run struct {
	doc     string
	changed []string
}

func (r *run) replace(label string, re *regexp.Regexp, repl string) {
	out, ok := replaceFirst(re, r.doc, repl)
	r.record(label, out, ok)
}

func (r *run) record(label, out string, ok bool) {
	if ok && out != r.doc {
		r.changed = append(r.changed, label)
	}
	r.doc = out
}

func (r *run) name(name, value string, inject bool) {
	tag := `<meta name="` + seo.EscapeAttr(name) + `" content="` + seo.EscapeAttr(value) + `" />`
	out, ok := replaceFirst(namePatterns[name], r.doc, tag)
	if !ok && inject {
		out, ok = replaceFirst(headClosePattern, r.doc, tag+"\n</head>")
	}
	r.record(name, out, ok)
}

func (r *run) property(prop, value string) {
	tag := `<meta property="` + seo.EscapeAttr(prop) + `" content="` + seo.EscapeAttr(value) + `" />`
	r.replace(prop, propertyPatterns[prop], tag)
}

// replaceFirst substitutes the first match of re with the literal repl.
func replaceFirst(re *regexp.Regexp, s, repl string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	var b strings.Builder
	b.Grow(len(s) - (loc[1] - loc[0]) + len(repl))
	b.WriteString(s[:loc[0]])
	b.WriteString(repl)
	b.WriteString(s[loc[1]:])
	return b.String(), true
}

func replaceLang(s, lang string) (string, bool) {
	m := langPattern.FindStringSubmatchIndex(s)
	if m == nil {
		return s, false
	}
	return s[:m[0]] + s[m[2]:m[3]] + `lang="` + seo.EscapeAttr(lang) + `"` + s[m[1]:], true
}
