package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/meta"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/httpx"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
)

// LocaleCatalog lists the languages published by the localization providers.
type LocaleCatalog interface {
	Published() []string
}

// SettingsHandlers exposes the supported-locale list.
type SettingsHandlers struct {
	store   locale.Store
	catalog LocaleCatalog
}

// SettingsOption customises SettingsHandlers.
type SettingsOption func(*SettingsHandlers)

// WithLocaleCatalog enables importing supported locales from catalog.
func WithLocaleCatalog(catalog LocaleCatalog) SettingsOption {
	return func(h *SettingsHandlers) {
		h.catalog = catalog
	}
}

// NewSettingsHandlers constructs settings handlers backed by store.
func NewSettingsHandlers(store locale.Store, opts ...SettingsOption) *SettingsHandlers {
	h := &SettingsHandlers{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers settings endpoints.
func (h *SettingsHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/settings/locales", h.listLocales)
	r.Put("/settings/locales", h.saveLocales)
	r.Post("/settings/locales/import", h.importLocales)
}

type localesPayload struct {
	Locales []locale.Entry `json:"locales"`
}

type importResponse struct {
	Locales  []locale.Entry `json:"locales"`
	Imported []locale.Entry `json:"imported"`
}

func (h *SettingsHandlers) listLocales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.store == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("settings store"))
		return
	}
	entries, err := h.store.SupportedLocales(ctx)
	if err != nil {
		requestctx.Logger(ctx).Error("read supported locales", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("settings_unavailable", "failed to read supported locales", http.StatusInternalServerError))
		return
	}
	if entries == nil {
		entries = []locale.Entry{}
	}
	httpx.WriteJSON(w, http.StatusOK, localesPayload{Locales: entries})
}

func (h *SettingsHandlers) saveLocales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.store == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("settings store"))
		return
	}

	var req localesPayload
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", err.Error()))
		return
	}
	if req.Locales == nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", "locales is required"))
		return
	}

	saved, ok := h.save(w, r, req.Locales)
	if !ok {
		return
	}
	requestctx.Logger(ctx).Info("supported locales updated", zap.Strings("locales", locale.Codes(saved)))
	httpx.WriteJSON(w, http.StatusOK, localesPayload{Locales: saved})
}

// importLocales adds the languages published by the providers that are not
// supported yet. Existing entries and their labels are kept.
func (h *SettingsHandlers) importLocales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.store == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("settings store"))
		return
	}
	var published []string
	if h.catalog != nil {
		published = h.catalog.Published()
	}
	if len(published) == 0 {
		httpx.WriteError(ctx, w, httpx.NewError("no_published_locales", "no localization provider publishes a language list", http.StatusConflict))
		return
	}

	existing, err := h.store.SupportedLocales(ctx)
	if err != nil {
		requestctx.Logger(ctx).Error("read supported locales", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("settings_unavailable", "failed to read supported locales", http.StatusInternalServerError))
		return
	}
	merged, added := locale.Merge(existing, published)
	if added == nil {
		added = []locale.Entry{}
	}

	saved := existing
	if len(added) > 0 {
		var ok bool
		if saved, ok = h.save(w, r, merged); !ok {
			return
		}
	}
	if saved == nil {
		saved = []locale.Entry{}
	}
	requestctx.Logger(ctx).Info("supported locales imported",
		zap.Strings("imported", locale.Codes(added)),
		zap.Strings("locales", locale.Codes(saved)),
	)
	httpx.WriteJSON(w, http.StatusOK, importResponse{Locales: saved, Imported: added})
}

// save persists entries unless two codes would share override storage keys.
func (h *SettingsHandlers) save(w http.ResponseWriter, r *http.Request, entries []locale.Entry) ([]locale.Entry, bool) {
	ctx := r.Context()
	if conflicts := meta.KeyConflicts(locale.Codes(locale.Sanitize(entries))); len(conflicts) > 0 {
		pairs := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			pairs = append(pairs, c[0]+"/"+c[1])
		}
		httpx.WriteError(ctx, w, httpx.NewError("locale_conflict", "locale codes would share override storage", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"conflicts": pairs}))
		return nil, false
	}

	saved, err := h.store.SaveLocales(ctx, entries)
	if err != nil {
		requestctx.Logger(ctx).Error("save supported locales", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("settings_unavailable", "failed to save supported locales", http.StatusInternalServerError))
		return nil, false
	}
	if saved == nil {
		saved = []locale.Entry{}
	}
	return saved, true
}
