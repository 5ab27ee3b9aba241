package meta

import (
	"regexp"
	"strings"
)

// Field names one overridable SEO property of a content item.
type Field string

const (
	FieldTitle         Field = "title"
	FieldDescription   Field = "description"
	FieldOGTitle       Field = "og_title"
	FieldOGDescription Field = "og_description"
	FieldOGImage       Field = "og_image"
	FieldCanonicalURL  Field = "canonical_url"
)

// Fields lists every field in storage order.
var Fields = []Field{
	FieldTitle,
	FieldDescription,
	FieldOGTitle,
	FieldOGDescription,
	FieldOGImage,
	FieldCanonicalURL,
}

// ParseField maps a field name to its Field. Names are matched case-insensitively.
func ParseField(name string) (Field, bool) {
	candidate := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range Fields {
		if f == candidate {
			return f, true
		}
	}
	return "", false
}

// IsURL reports whether the field holds an absolute URL.
func (f Field) IsURL() bool {
	return f == FieldOGImage || f == FieldCanonicalURL
}

const keyPrefix = "_gg_seo_"

var keyStrip = regexp.MustCompile(`[^a-z0-9_-]`)

// MetaKey returns the storage key for a locale and field:
// _gg_seo_<locale>_<field>, each part lower-cased and stripped to [a-z0-9_-].
func MetaKey(locale string, field Field) string {
	return keyPrefix + sanitizeKey(locale) + "_" + sanitizeKey(string(field))
}

func sanitizeKey(value string) string {
	return keyStrip.ReplaceAllString(strings.ToLower(value), "")
}

// KeyConflicts returns pairs of distinct locale codes whose storage keys
// overlap, such as en_US and en_us, or it_IT and it_IT_og (it_IT_og_title is
// both). Repeating the same code is not a conflict.
func KeyConflicts(locales []string) [][2]string {
	owners := make(map[string]string)
	seen := make(map[[2]string]bool)
	var out [][2]string
	for _, loc := range locales {
		for _, f := range Fields {
			key := MetaKey(loc, f)
			owner, ok := owners[key]
			if !ok {
				owners[key] = loc
				continue
			}
			pair := [2]string{owner, loc}
			if owner == loc || seen[pair] {
				continue
			}
			seen[pair] = true
			out = append(out, pair)
		}
	}
	return out
}
