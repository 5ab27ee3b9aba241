package locale

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrEmptyCode is returned when a locale code is empty once sanitized.
var ErrEmptyCode = errors.New("locale: empty code")

var codeStrip = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Entry is one operator-configured supported locale.
type Entry struct {
	Code  string `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}

// SanitizeCode strips every character outside [a-zA-Z0-9_-] and trims the result.
func SanitizeCode(code string) string {
	return strings.TrimSpace(codeStrip.ReplaceAllString(code, ""))
}

// Normalize drops entries whose code is empty after sanitization and returns
// the rest in their original order. Duplicates are kept.
func Normalize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		code := SanitizeCode(entry.Code)
		if code == "" {
			continue
		}
		out = append(out, Entry{Code: code, Label: strings.TrimSpace(entry.Label)})
	}
	return out
}

// Codes lists entry codes in order.
func Codes(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Code)
	}
	return out
}

// Contains reports whether code matches an entry exactly.
func Contains(entries []Entry, code string) bool {
	if code == "" {
		return false
	}
	for _, entry := range entries {
		if entry.Code == code {
			return true
		}
	}
	return false
}

// Label returns the label of the first entry matching code.
func Label(entries []Entry, code string) (string, bool) {
	for _, entry := range entries {
		if entry.Code == code {
			return entry.Label, true
		}
	}
	return "", false
}

// ParseCode sanitizes a single code and fails with ErrEmptyCode when nothing is left.
func ParseCode(code string) (string, error) {
	clean := SanitizeCode(code)
	if clean == "" {
		return "", ErrEmptyCode
	}
	return clean, nil
}

// DisplayLabel names a locale in its own language (it_IT -> "italiano (Italia)").
// Codes that are not BCP 47 tags are returned as is.
func DisplayLabel(code string) string {
	tag, err := language.Parse(LangAttr(code))
	if err != nil {
		return code
	}
	if namer := display.Tags(tag); namer != nil {
		if name := namer.Name(tag); name != "" {
			return name
		}
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// Merge appends the published codes missing from existing, labelled with
// DisplayLabel. Existing entries keep their position and label.
func Merge(existing []Entry, published []string) (merged, added []Entry) {
	merged = append([]Entry(nil), existing...)
	for _, raw := range published {
		code := SanitizeCode(raw)
		if code == "" || Contains(merged, code) {
			continue
		}
		entry := Entry{Code: code, Label: DisplayLabel(code)}
		merged = append(merged, entry)
		added = append(added, entry)
	}
	return merged, added
}
