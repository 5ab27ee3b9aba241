package extension

import (
	"fmt"
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
)

// Strategy turns a resolved override set into hook registrations for one extension.
type Strategy interface {
	Kind() Kind
	Apply(set seo.OverrideSet) []Registration
}

// For returns the strategy for kind. Unknown kinds use the platform strategy.
func For(kind Kind) Strategy {
	switch kind {
	case KindYoast:
		return yoastStrategy{}
	case KindRankMath:
		return rankMathStrategy{}
	case KindAIOSEO:
		return aioseoStrategy{}
	default:
		return platformStrategy{}
	}
}

type yoastStrategy struct{}

func (yoastStrategy) Kind() Kind { return KindYoast }

func (yoastStrategy) Apply(set seo.OverrideSet) []Registration {
	if set.IsEmpty() {
		return nil
	}
	var regs registrations
	regs.filter(set.Title != nil, PointYoastTitle, PriorityFilter, titleFilter(set))
	regs.filter(set.Description != nil, PointYoastDescription, PriorityFilter, attrFilter(set.Description))
	regs.filter(set.CanonicalURL != nil, PointYoastCanonical, PriorityFilter, urlFilter(set.CanonicalURL))
	regs.filter(set.OGTitle != nil, PointYoastOGTitle, PriorityFilter, attrFilter(set.OGTitle))
	regs.filter(set.OGDescription != nil, PointYoastOGDescription, PriorityFilter, attrFilter(set.OGDescription))
	regs.filter(set.OGImage != nil, PointYoastOGImage, PriorityFilter, urlFilter(set.OGImage))
	regs.filter(set.Locale != "", PointYoastLocale, PriorityFilter, localeFilter(set))
	return regs
}

type rankMathStrategy struct{}

func (rankMathStrategy) Kind() Kind { return KindRankMath }

func (rankMathStrategy) Apply(set seo.OverrideSet) []Registration {
	if set.IsEmpty() {
		return nil
	}
	var regs registrations
	regs.filter(set.Title != nil, PointRankMathTitle, PriorityFilter, titleFilter(set))
	regs.filter(set.Description != nil, PointRankMathDescription, PriorityFilter, attrFilter(set.Description))
	regs.filter(set.CanonicalURL != nil, PointRankMathCanonical, PriorityFilter, urlFilter(set.CanonicalURL))
	regs.filter(set.OGTitle != nil, PointRankMathOGTitle, PriorityFilter, attrFilter(set.OGTitle))
	regs.filter(set.OGDescription != nil, PointRankMathOGDescription, PriorityFilter, attrFilter(set.OGDescription))
	regs.filter(set.Locale != "", PointRankMathOGLocale, PriorityFilter, localeFilter(set))
	return regs
}

type aioseoStrategy struct{}

func (aioseoStrategy) Kind() Kind { return KindAIOSEO }

func (aioseoStrategy) Apply(set seo.OverrideSet) []Registration {
	if set.IsEmpty() {
		return nil
	}
	var regs registrations
	regs.filter(set.Title != nil, PointAIOSEOTitle, PriorityAIOSEO, titleFilter(set))
	regs.filter(set.Title != nil, PointDocumentTitle, PriorityAIOSEO, titleFilter(set))
	regs.filter(set.Description != nil, PointAIOSEODescription, PriorityAIOSEO, attrFilter(set.Description))
	regs.add(PointAIOSEOFacebookTags, PriorityAIOSEO, facebookTags(set))
	regs.add(PointAIOSEOTwitterTags, PriorityAIOSEO, twitterTags(set))
	regs.filter(set.Locale != "", PointAIOSEOOGLocale, PriorityAIOSEO, localeFilter(set))
	regs.filter(set.CanonicalURL != nil, PointAIOSEOCanonical, PriorityAIOSEO, urlFilter(set.CanonicalURL))
	regs.add(PointAIOSEOSchema, PriorityAIOSEO, schemaGraph(set))
	return regs
}

// platformStrategy targets the host's own head output when no SEO extension is active.
type platformStrategy struct{}

func (platformStrategy) Kind() Kind { return KindNone }

func (platformStrategy) Apply(set seo.OverrideSet) []Registration {
	if set.IsEmpty() {
		return nil
	}
	var regs registrations
	regs.filter(set.Title != nil, PointDocumentTitle, PriorityFilter, titleFilter(set))
	if set.Description != nil || set.OGTitle != nil || set.OGDescription != nil || set.OGImage != nil {
		regs.add(PointHead, PriorityHead, headMeta(set))
	}
	if set.CanonicalURL != nil {
		regs.add(PointHead, PriorityDefault, Removal{Callback: CallbackCanonical})
		regs.add(PointHead, PriorityHead, canonicalLink(set))
	}
	return regs
}

type registrations []Registration

func (r *registrations) add(point string, priority int, t Transform) {
	*r = append(*r, Registration{Point: point, Priority: priority, Transform: t})
}

func (r *registrations) filter(present bool, point string, priority int, f StringFilter) {
	if present {
		r.add(point, priority, f)
	}
}

func valueFilter(value *string, escape func(string) string) StringFilter {
	return func(original string) string {
		if value == nil {
			return original
		}
		return escape(*value)
	}
}

func titleFilter(set seo.OverrideSet) StringFilter { return valueFilter(set.Title, seo.EscapeHTML) }
func attrFilter(value *string) StringFilter        { return valueFilter(value, seo.EscapeAttr) }
func urlFilter(value *string) StringFilter         { return valueFilter(value, seo.EscapeURL) }

// localeFilter serves both the og:locale filters and Yoast's site locale filter.
func localeFilter(set seo.OverrideSet) StringFilter {
	return func(original string) string {
		if set.Locale == "" {
			return original
		}
		return locale.ToOG(set.Locale)
	}
}

func facebookTags(set seo.OverrideSet) TagMapFilter {
	return func(tags map[string]string) map[string]string {
		out := copyTags(tags)
		if set.OGTitle != nil {
			out["og:title"] = seo.EscapeAttr(*set.OGTitle)
		}
		if set.OGDescription != nil {
			out["og:description"] = seo.EscapeAttr(*set.OGDescription)
		}
		if set.OGImage != nil {
			out["og:image"] = seo.EscapeURL(*set.OGImage)
			// dimensions of the original image no longer apply
			out["og:image:width"] = ""
			out["og:image:height"] = ""
		}
		if set.Locale != "" {
			out["og:locale"] = locale.ToOG(set.Locale)
		}
		if set.CanonicalURL != nil {
			out["og:url"] = seo.EscapeURL(*set.CanonicalURL)
		}
		return out
	}
}

func twitterTags(set seo.OverrideSet) TagMapFilter {
	return func(tags map[string]string) map[string]string {
		out := copyTags(tags)
		if set.OGTitle != nil {
			out["twitter:title"] = seo.EscapeAttr(*set.OGTitle)
		}
		if set.OGDescription != nil {
			out["twitter:description"] = seo.EscapeAttr(*set.OGDescription)
		}
		if set.OGImage != nil {
			out["twitter:image"] = seo.EscapeURL(*set.OGImage)
		}
		return out
	}
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags)+6)
	for k, v := range tags {
		out[k] = v
	}
	return out
}

var pageTypes = map[string]bool{
	"WebPage":        true,
	"Article":        true,
	"BlogPosting":    true,
	"NewsArticle":    true,
	"ItemPage":       true,
	"CollectionPage": true,
}

func schemaGraph(set seo.OverrideSet) GraphFilter {
	return func(graph []map[string]any) []map[string]any {
		if graph == nil {
			return nil
		}
		lang := ""
		if set.Locale != "" {
			lang = locale.LangAttr(set.Locale)
		}
		out := make([]map[string]any, len(graph))
		for i, node := range graph {
			types, ok := nodeTypes(node)
			if !ok {
				out[i] = node
				continue
			}
			page, crumbs := false, false
			for _, t := range types {
				page = page || pageTypes[t]
				crumbs = crumbs || t == "BreadcrumbList"
			}
			if !page && !(crumbs && lang != "") {
				out[i] = node
				continue
			}
			patched := make(map[string]any, len(node)+1)
			for k, v := range node {
				patched[k] = v
			}
			if page {
				if _, has := patched["name"]; has && set.Title != nil {
					patched["name"] = *set.Title
				}
				if _, has := patched["description"]; has && set.Description != nil {
					patched["description"] = *set.Description
				}
			}
			if lang != "" {
				patched["inLanguage"] = lang
			}
			out[i] = patched
		}
		return out
	}
}

func nodeTypes(node map[string]any) ([]string, bool) {
	if node == nil {
		return nil, false
	}
	switch t := node["@type"].(type) {
	case string:
		return []string{t}, true
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func headMeta(set seo.OverrideSet) HeadEmitter {
	return func() string {
		var b strings.Builder
		if set.Description != nil {
			fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\" />\n", seo.EscapeAttr(*set.Description))
		}
		if set.OGTitle != nil {
			fmt.Fprintf(&b, "<meta property=\"og:title\" content=\"%s\" />\n", seo.EscapeAttr(*set.OGTitle))
		}
		if set.OGDescription != nil {
			fmt.Fprintf(&b, "<meta property=\"og:description\" content=\"%s\" />\n", seo.EscapeAttr(*set.OGDescription))
		}
		if set.OGImage != nil {
			fmt.Fprintf(&b, "<meta property=\"og:image\" content=\"%s\" />\n", seo.EscapeURL(*set.OGImage))
		}
		if set.Locale != "" {
			fmt.Fprintf(&b, "<meta property=\"og:locale\" content=\"%s\" />\n", seo.EscapeAttr(locale.ToOG(set.Locale)))
		}
		return b.String()
	}
}

func canonicalLink(set seo.OverrideSet) HeadEmitter {
	return func() string {
		if set.CanonicalURL == nil {
			return ""
		}
		return fmt.Sprintf("<link rel=\"canonical\" href=\"%s\" />\n", seo.EscapeURL(*set.CanonicalURL))
	}
}
