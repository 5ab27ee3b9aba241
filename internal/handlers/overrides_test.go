package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/meta"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo/extension"
)

type stubDocuments struct {
	doc   string
	err   error
	paths []string
}

func (s *stubDocuments) FetchDocument(_ context.Context, path string) ([]byte, error) {
	s.paths = append(s.paths, path)
	return []byte(s.doc), s.err
}

func overridesRouter(t *testing.T, opts ...OverridesOption) chi.Router {
	t.Helper()
	backend := meta.NewMemoryBackend()
	writer := meta.NewWriter(backend)
	_, err := writer.SetFields(context.Background(), "2", "it_IT", map[meta.Field]string{
		meta.FieldTitle:        "Chi siamo",
		meta.FieldDescription:  "Lo studio",
		meta.FieldCanonicalURL: "https://example.com/it/chi-siamo/",
	})
	require.NoError(t, err)

	settings := locale.NewStaticSettings(locale.Entry{Code: "en_US"}, locale.Entry{Code: "it_IT"})
	detector := locale.NewDetector("en_US", nil, locale.NewVarProvider("lang"))
	resolver := seo.NewResolver(meta.NewAccessor(backend, nil), settings, nil)

	router := chi.NewRouter()
	router.Use(seo.StateMiddleware)
	NewOverridesHandlers(detector, resolver, opts...).Routes(router)
	return router
}

func getOverrides(t *testing.T, router http.Handler, target string) (int, overridesResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var resp overridesResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func findPreview(t *testing.T, resp overridesResponse, point string) registrationPreview {
	t.Helper()
	for _, p := range resp.Registrations {
		if p.Point == point {
			return p
		}
	}
	t.Fatalf("no registration at %s in %+v", point, resp.Registrations)
	return registrationPreview{}
}

func TestOverridesPlatformStrategy(t *testing.T) {
	router := overridesRouter(t)

	code, resp := getOverrides(t, router, "/items/2/overrides?lang=it_IT")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "it_IT", resp.Locale)
	assert.Equal(t, "en_US", resp.DefaultLocale)
	assert.True(t, resp.Translated)
	assert.Equal(t, extension.KindNone, resp.Extension)
	require.NotNil(t, resp.Overrides.OGTitle)
	assert.Equal(t, "Chi siamo", *resp.Overrides.OGTitle, "og title falls back to title")

	title := findPreview(t, resp, extension.PointDocumentTitle)
	require.NotNil(t, title.Value)
	assert.Equal(t, "Chi siamo", *title.Value)

	head := findPreview(t, resp, extension.PointHead)
	assert.Equal(t, []string{"emitter", "emitter"}, head.Kinds)
	assert.Contains(t, head.HTML, `<meta name="description" content="Lo studio" />`)
	assert.Contains(t, head.HTML, `<link rel="canonical" href="https://example.com/it/chi-siamo/" />`)
	assert.Equal(t, map[string][]string{extension.PointHead: {extension.CallbackCanonical}}, resp.Removals)
}

func TestOverridesDefaultLocaleHasNoRegistrations(t *testing.T) {
	code, resp := getOverrides(t, overridesRouter(t), "/items/2/overrides")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "en_US", resp.Locale)
	assert.False(t, resp.Translated)
	assert.True(t, resp.Overrides.IsEmpty())
	assert.Empty(t, resp.Registrations)
}

func TestOverridesDetectsExtensionFromMarkers(t *testing.T) {
	router := overridesRouter(t, WithMarkerProbe(extension.NewMarkers(extension.MarkerRankMath)))

	_, resp := getOverrides(t, router, "/items/2/overrides?lang=it_IT")
	assert.Equal(t, extension.KindRankMath, resp.Extension)

	// Yoast wins over RankMath regardless of where the marker comes from.
	_, resp = getOverrides(t, router, "/items/2/overrides?lang=it_IT&markers=WPSEO_VERSION")
	assert.Equal(t, extension.KindYoast, resp.Extension)
	desc := findPreview(t, resp, extension.PointYoastDescription)
	require.NotNil(t, desc.Value)
	assert.Equal(t, "Lo studio", *desc.Value)
}

func TestOverridesSniffsDocument(t *testing.T) {
	docs := &stubDocuments{doc: `<html><head><meta name="generator" content="All in One SEO (AIOSEO) 4.5.0"></head><body></body></html>`}
	router := overridesRouter(t, WithDocumentSource(docs))

	_, resp := getOverrides(t, router, "/items/2/overrides?lang=it_IT&path=/it/chi-siamo/")
	assert.Equal(t, []string{"/it/chi-siamo/"}, docs.paths)
	assert.Equal(t, extension.KindAIOSEO, resp.Extension)

	schema := findPreview(t, resp, extension.PointAIOSEOSchema)
	require.Len(t, schema.Graph, 2)
	assert.Equal(t, "Chi siamo", schema.Graph[0]["name"])
	assert.Equal(t, "it-IT", schema.Graph[1]["inLanguage"])

	fb := findPreview(t, resp, extension.PointAIOSEOFacebookTags)
	assert.Equal(t, "it_IT", fb.Tags["og:locale"])

	docs.err = errors.New("upstream down")
	docs.doc = ""
	_, resp = getOverrides(t, router, "/items/2/overrides?lang=it_IT&path=/it/")
	assert.Equal(t, extension.KindNone, resp.Extension, "sniff failures fall back to no extension")
}

func TestOverridesExplicitKind(t *testing.T) {
	router := overridesRouter(t)

	_, resp := getOverrides(t, router, "/items/2/overrides?lang=it_IT&kind=Yoast")
	assert.Equal(t, extension.KindYoast, resp.Extension)

	code, _ := getOverrides(t, router, "/items/2/overrides?kind=wordpress-seo")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = getOverrides(t, router, "/items/-1/overrides")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOverridesLocaleLabel(t *testing.T) {
	labels := locale.NewStaticSettings(
		locale.Entry{Code: "en_US", Label: "English"},
		locale.Entry{Code: "it_IT", Label: "Italiano"},
	)
	router := overridesRouter(t, WithLocaleLabels(labels))

	_, resp := getOverrides(t, router, "/items/2/overrides?lang=it_IT")
	assert.Equal(t, "Italiano", resp.LocaleLabel)

	_, resp = getOverrides(t, router, "/items/2/overrides?lang=de_DE")
	assert.Empty(t, resp.LocaleLabel, "unsupported locales have no label")

	_, resp = getOverrides(t, overridesRouter(t), "/items/2/overrides?lang=it_IT")
	assert.Empty(t, resp.LocaleLabel)
}
