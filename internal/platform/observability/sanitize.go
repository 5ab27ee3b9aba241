package observability

import (
	"strings"
	"unicode"
)

const (
	pathLimit   = 180
	methodLimit = 10
	tokenLimit  = 64
)

// SanitizePath prepares a page path or route pattern for logs and span
// names: the query and fragment are dropped, control characters removed and
// the result bounded. An empty path is reported as "/".
func SanitizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path = printable(path, pathLimit); path == "" {
		return "/"
	}
	return path
}

// SanitizeMethod upper-cases and bounds an HTTP method.
func SanitizeMethod(method string) string {
	return strings.ToUpper(printable(method, methodLimit))
}

// SanitizeToken bounds short request-derived identifiers such as item ids
// and locale codes.
func SanitizeToken(value string) string {
	return printable(strings.TrimSpace(value), tokenLimit)
}

// printable keeps at most limit runes of value, skipping control characters.
func printable(value string, limit int) string {
	var b strings.Builder
	kept := 0
	for _, r := range value {
		if kept == limit {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		kept++
	}
	return b.String()
}
