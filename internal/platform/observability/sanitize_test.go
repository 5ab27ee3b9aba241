package observability

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePath(t *testing.T) {
	assert.Equal(t, "/it/chi-siamo/", SanitizePath("/it/chi-siamo/?preview=1&token=abc#top"))
	assert.Equal(t, "/v1/items/{itemID}/overrides", SanitizePath("/v1/items/{itemID}/overrides"))
	assert.Equal(t, "/", SanitizePath(""))
	assert.Equal(t, "/", SanitizePath("?lang=it_IT"))
	assert.Equal(t, "/ab", SanitizePath("/a\nb\r"))
	assert.Equal(t, pathLimit, utf8.RuneCountInString(SanitizePath("/"+strings.Repeat("é", 400))), "limit counts runes")
}

func TestSanitizeMethodAndToken(t *testing.T) {
	assert.Equal(t, "GET", SanitizeMethod("get"))
	assert.Equal(t, "PURGEPURGE", SanitizeMethod("purgepurgepurge"))
	assert.Equal(t, "it_IT", SanitizeToken(" it_IT\x00 "))
	assert.Len(t, SanitizeToken(strings.Repeat("9", 100)), tokenLimit)
}
