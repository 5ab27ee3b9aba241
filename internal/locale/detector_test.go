package locale

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name         string
	current      string
	fallback     string
	err          error
	panics       bool
	currentCalls int
	defaultCalls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Current(*http.Request) (string, error) {
	s.currentCalls++
	if s.panics {
		panic("provider exploded")
	}
	return s.current, s.err
}

func (s *stubProvider) Default() (string, error) {
	s.defaultCalls++
	if s.panics {
		panic("provider exploded")
	}
	return s.fallback, s.err
}

func TestDetectLocaleStopsAtFirstAnswer(t *testing.T) {
	a := &stubProvider{name: "a", current: "fr_FR"}
	b := &stubProvider{name: "b", current: "de_DE"}
	c := &stubProvider{name: "c", current: "es_ES"}
	d := NewDetector("en_US", nil, a, b, c)

	got := d.DetectLocale(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "fr_FR", got)
	assert.Equal(t, 1, a.currentCalls)
	assert.Zero(t, b.currentCalls, "later providers must not be consulted")
	assert.Zero(t, c.currentCalls)
}

func TestDetectLocaleFallsThroughEmptyAndFailingProviders(t *testing.T) {
	empty := &stubProvider{name: "empty"}
	failing := &stubProvider{name: "failing", err: errors.New("boom")}
	exploding := &stubProvider{name: "exploding", panics: true}
	answering := &stubProvider{name: "answering", current: "it_IT"}
	d := NewDetector("en_US", nil, empty, failing, exploding, answering)

	got := d.DetectLocale(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "it_IT", got)
	assert.Equal(t, 1, empty.currentCalls)
	assert.Equal(t, 1, failing.currentCalls)
	assert.Equal(t, 1, exploding.currentCalls)
	assert.Equal(t, 1, answering.currentCalls)
}

func TestDetectLocaleUsesPlatformDefault(t *testing.T) {
	d := NewDetector("en_US", nil, &stubProvider{name: "a"}, nil)
	assert.Equal(t, "en_US", d.DetectLocale(httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, "en_US", d.DefaultLocale())
	assert.Equal(t, []string{"a"}, d.Providers())
}

func TestDefaultLocaleOrder(t *testing.T) {
	a := &stubProvider{name: "a", panics: true}
	b := &stubProvider{name: "b", fallback: "it_IT"}
	c := &stubProvider{name: "c", fallback: "fr_FR"}
	d := NewDetector("en_US", nil, a, b, c)

	assert.Equal(t, "it_IT", d.DefaultLocale())
	assert.Equal(t, 1, a.defaultCalls)
	assert.Zero(t, c.defaultCalls)
}

func TestIsTranslatedRequest(t *testing.T) {
	d := NewDetector("en_US", nil, NewVarProvider("trp-lang"))

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	translated := httptest.NewRequest(http.MethodGet, "/?trp-lang=it_IT", nil)

	assert.False(t, d.IsTranslatedRequest(plain))
	assert.True(t, d.IsTranslatedRequest(translated))
}

func TestDetectorWithConfiguredProviders(t *testing.T) {
	d := NewDetector("en_US", nil,
		NewVarProvider("trp-lang"),
		NewAcceptLanguageProvider([]string{"it_IT", "fr_FR"}),
		NewCodeProvider("X-Language-Code", map[string]string{"pt": "pt_BR"}, ""),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr-CH, fr;q=0.9, en;q=0.8")
	req.Header.Set("X-Language-Code", "pt")
	assert.Equal(t, "fr_FR", d.DetectLocale(req), "accept-language outranks the language code")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Language-Code", "pt")
	assert.Equal(t, "pt_BR", d.DetectLocale(req))

	req = httptest.NewRequest(http.MethodGet, "/?trp-lang=de_DE", nil)
	req.Header.Set("Accept-Language", "it")
	require.Equal(t, "de_DE", d.DetectLocale(req))
}

func TestDetectorPublished(t *testing.T) {
	d := NewDetector("en_US", nil,
		NewVarProvider("trp-lang"),
		NewPathProvider(map[string]string{"it": "it_IT"}, "en_US"),
		NewAcceptLanguageProvider([]string{"it_IT", "fr_FR"}),
	)
	assert.Equal(t, []string{"en_US", "it_IT", "fr_FR"}, d.Published())

	assert.Empty(t, NewDetector("en_US", nil, NewVarProvider("lang")).Published())
}
