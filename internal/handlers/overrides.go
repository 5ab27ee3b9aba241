package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/hooks"
	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/httpx"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/observability"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo/extension"
)

// OverrideResolver resolves the override set for an item and locale.
type OverrideResolver interface {
	Resolve(ctx context.Context, item seo.Item, locale string) seo.OverrideSet
}

// DocumentSource fetches a rendered page from the content host.
type DocumentSource interface {
	FetchDocument(ctx context.Context, path string) ([]byte, error)
}

// OverridesHandlers previews the overrides and hook registrations a request would get.
type OverridesHandlers struct {
	detector  *locale.Detector
	resolver  OverrideResolver
	markers   extension.Probe
	documents DocumentSource
	labels    locale.Settings
}

// OverridesOption customises OverridesHandlers.
type OverridesOption func(*OverridesHandlers)

// WithMarkerProbe sets the markers the host is known to expose.
func WithMarkerProbe(probe extension.Probe) OverridesOption {
	return func(h *OverridesHandlers) {
		h.markers = probe
	}
}

// WithDocumentSource lets the ?path= parameter sniff markers from a rendered page.
func WithDocumentSource(src DocumentSource) OverridesOption {
	return func(h *OverridesHandlers) {
		h.documents = src
	}
}

// WithLocaleLabels names the active locale from the supported-locale list.
func WithLocaleLabels(settings locale.Settings) OverridesOption {
	return func(h *OverridesHandlers) {
		h.labels = settings
	}
}

// NewOverridesHandlers constructs the preview handlers.
func NewOverridesHandlers(detector *locale.Detector, resolver OverrideResolver, opts ...OverridesOption) *OverridesHandlers {
	h := &OverridesHandlers{detector: detector, resolver: resolver}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the preview endpoint.
func (h *OverridesHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/items/{itemID}/overrides", h.getOverrides)
}

type registrationPreview struct {
	Point string            `json:"point"`
	Kinds []string          `json:"kinds"`
	Value *string           `json:"value,omitempty"`
	Tags  map[string]string `json:"tags,omitempty"`
	Graph []map[string]any  `json:"graph,omitempty"`
	HTML  string            `json:"html,omitempty"`
}

type overridesResponse struct {
	ItemID        string                `json:"item_id"`
	Locale        string                `json:"locale"`
	LocaleLabel   string                `json:"locale_label,omitempty"`
	DefaultLocale string                `json:"default_locale"`
	Translated    bool                  `json:"translated"`
	Overrides     seo.OverrideSet       `json:"overrides"`
	Extension     extension.Kind        `json:"extension"`
	Registrations []registrationPreview `json:"registrations"`
	Removals      map[string][]string   `json:"removals"`
}

func (h *OverridesHandlers) getOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.detector == nil || h.resolver == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("override resolution"))
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}

	kind, ok := h.extensionKind(w, r)
	if !ok {
		return
	}

	loc := seo.RequestLocale(r, h.detector)
	def := seo.RequestDefaultLocale(r, h.detector)
	set := h.resolver.Resolve(ctx, seo.Item{ID: itemID, Singular: true}, loc)

	registry := hooks.New()
	registry.Register(extension.For(kind).Apply(set)...)

	httpx.WriteJSON(w, http.StatusOK, overridesResponse{
		ItemID:        itemID,
		Locale:        loc,
		LocaleLabel:   h.localeLabel(ctx, loc),
		DefaultLocale: def,
		Translated:    loc != def,
		Overrides:     set,
		Extension:     kind,
		Registrations: previewRegistrations(registry),
		Removals:      registry.Removals(),
	})
}

func (h *OverridesHandlers) localeLabel(ctx context.Context, loc string) string {
	if h.labels == nil {
		return ""
	}
	entries, err := h.labels.SupportedLocales(ctx)
	if err != nil {
		requestctx.Logger(ctx).Debug("read locale labels", zap.Error(err))
		return ""
	}
	label, _ := locale.Label(entries, loc)
	return label
}

// extensionKind honours an explicit ?kind= and otherwise detects from the
// configured markers, ?markers= and the page named by ?path=.
func (h *OverridesHandlers) extensionKind(w http.ResponseWriter, r *http.Request) (extension.Kind, bool) {
	query := r.URL.Query()
	if raw := query.Get("kind"); raw != "" {
		kind, ok := extension.ParseKind(raw)
		if !ok {
			httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_kind", "unknown extension kind").
				WithDetails(map[string]any{"kind": raw}))
			return "", false
		}
		return kind, true
	}

	probes := extension.AnyProbe{h.markers}
	if raw := query.Get("markers"); raw != "" {
		probes = append(probes, extension.NewMarkers(strings.Split(raw, ",")...))
	}
	if path := strings.TrimSpace(query.Get("path")); path != "" && h.documents != nil {
		doc, err := h.documents.FetchDocument(r.Context(), path)
		if err != nil {
			requestctx.Logger(r.Context()).Debug("document sniff failed", zap.String("path", observability.SanitizePath(path)), zap.Error(err))
		} else {
			probes = append(probes, extension.DocumentProbe(doc))
		}
	}
	return extension.DetectOnce(seo.StateFrom(r.Context()), probes), true
}

func previewRegistrations(registry *hooks.Registry) []registrationPreview {
	points := registry.Points()
	out := make([]registrationPreview, 0, len(points))
	for _, point := range points {
		kinds := registry.Kinds(point)
		preview := registrationPreview{Point: point, Kinds: kinds}
		for _, kind := range kinds {
			switch kind {
			case "string":
				value := registry.ApplyString(point, "")
				preview.Value = &value
			case "tag_map":
				preview.Tags = registry.ApplyTagMap(point, map[string]string{})
			case "graph":
				preview.Graph = registry.ApplyGraph(point, sampleGraph())
			case "emitter":
				preview.HTML = registry.Emit(point)
			}
		}
		out = append(out, preview)
	}
	return out
}

func sampleGraph() []map[string]any {
	return []map[string]any{
		{"@type": "WebPage", "name": "", "description": ""},
		{"@type": "BreadcrumbList"},
	}
}
