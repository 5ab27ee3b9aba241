package seo

import (
	"strings"
)

// EscapeHTML escapes text for element content. Existing character
// references are left alone so already-encoded values are not double-encoded.
func EscapeHTML(value string) string {
	return escapeSpecial(value)
}

// EscapeAttr escapes a value placed inside a quoted attribute.
func EscapeAttr(value string) string {
	return escapeSpecial(value)
}

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"ftp":    true,
	"ftps":   true,
	"mailto": true,
	"tel":    true,
}

// EscapeURL cleans a URL for use in an href or content attribute. Characters
// outside the URL-safe set are dropped, spaces become %20, URLs with a
// disallowed scheme collapse to "", and ampersands and single quotes are
// encoded as numeric references.
func EscapeURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, " ", "%20")

	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if c := value[i]; urlSafe(c) {
			b.WriteByte(c)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return ""
	}

	if scheme, _, ok := strings.Cut(cleaned, ":"); ok && !strings.ContainsAny(scheme, "/?#") {
		if !allowedSchemes[strings.ToLower(scheme)] {
			return ""
		}
	} else if !strings.HasPrefix(cleaned, "/") && !strings.HasPrefix(cleaned, "#") && !strings.HasPrefix(cleaned, "?") {
		cleaned = "http://" + cleaned
	}

	cleaned = escapeAmpersands(cleaned, "&#038;")
	return strings.ReplaceAll(cleaned, "'", "&#039;")
}

func urlSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c >= 0x80:
		return true
	}
	return strings.IndexByte("-~+_.?#=!&;,/:%@$|*'()[]", c) >= 0
}

func escapeSpecial(value string) string {
	if !strings.ContainsAny(value, `&<>"'`) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 16)
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '&':
			if n := entityLength(value[i:]); n > 0 {
				b.WriteString(value[i : i+n])
				i += n - 1
				continue
			}
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#039;")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// escapeAmpersands encodes bare ampersands and &amp; as amp, keeping other references.
func escapeAmpersands(value, amp string) string {
	if !strings.Contains(value, "&") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 16)
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '&' {
			b.WriteByte(c)
			continue
		}
		n := entityLength(value[i:])
		switch {
		case n == 0, value[i:i+n] == "&amp;":
			b.WriteString(amp)
			if n > 0 {
				i += n - 1
			}
		default:
			b.WriteString(value[i : i+n])
			i += n - 1
		}
	}
	return b.String()
}

// entityLength returns the length of the character reference at the start
// of s (&name;, &#123; or &#x1f;), or 0 when s does not start with one.
func entityLength(s string) int {
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	if s[i] == '#' {
		i++
		hex := i < len(s) && (s[i] == 'x' || s[i] == 'X')
		if hex {
			i++
		}
		start := i
		for i < len(s) && (isDigit(s[i]) || (hex && isHex(s[i]))) {
			i++
		}
		if i == start || i >= len(s) || s[i] != ';' {
			return 0
		}
		return i + 1
	}
	start := i
	for i < len(s) && (isAlpha(s[i]) || (i > start && isDigit(s[i]))) {
		i++
	}
	if i == start || i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
