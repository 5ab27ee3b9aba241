package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/meta"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/httpx"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/textutil"
)

// MetaReader reads the stored overrides of an item.
type MetaReader interface {
	GetFields(ctx context.Context, itemID, locale string) map[meta.Field]string
}

// MetaWriter stores and clears overrides of an item.
type MetaWriter interface {
	SetFields(ctx context.Context, itemID, locale string, values map[meta.Field]string) (map[meta.Field]string, error)
	DeleteLocale(ctx context.Context, itemID, locale string) error
}

// MetaHandlers exposes per-item, per-locale override editing.
type MetaHandlers struct {
	reader   MetaReader
	writer   MetaWriter
	settings locale.Settings
}

// NewMetaHandlers constructs metadata handlers. When settings is non-nil,
// writes are limited to supported locales.
func NewMetaHandlers(reader MetaReader, writer MetaWriter, settings locale.Settings) *MetaHandlers {
	return &MetaHandlers{reader: reader, writer: writer, settings: settings}
}

// Routes registers metadata endpoints.
func (h *MetaHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/items/{itemID}/meta/{locale}", func(rt chi.Router) {
		rt.Get("/", h.getMeta)
		rt.Put("/", h.putMeta)
		rt.Delete("/", h.deleteMeta)
	})
}

type metaResponse struct {
	ItemID string                `json:"item_id"`
	Locale string                `json:"locale"`
	Fields map[meta.Field]string `json:"fields"`
}

type metaRequest struct {
	Fields map[string]string `json:"fields"`
}

func (h *MetaHandlers) getMeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.reader == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("metadata store"))
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	code, ok := localeParam(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, metaResponse{
		ItemID: itemID,
		Locale: code,
		Fields: h.reader.GetFields(ctx, itemID, code),
	})
}

func (h *MetaHandlers) putMeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.writer == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("metadata store"))
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	code, ok := localeParam(w, r)
	if !ok {
		return
	}
	if !h.supported(ctx, code) {
		httpx.WriteError(ctx, w, httpx.NewError("unsupported_locale", "locale is not in the supported locale list", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"locale": code}))
		return
	}

	var req metaRequest
	if err := decodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", err.Error()))
		return
	}
	fields := textutil.NormalizeStringMap(req.Fields)
	if len(fields) == 0 {
		httpx.WriteError(ctx, w, httpx.BadRequest("invalid_request", "fields must not be empty"))
		return
	}
	values := make(map[meta.Field]string, len(fields))
	for name, value := range fields {
		field, ok := meta.ParseField(name)
		if !ok {
			httpx.WriteError(ctx, w, httpx.BadRequest("invalid_field", "unknown field").
				WithDetails(map[string]any{"field": name}))
			return
		}
		values[field] = value
	}

	written, err := h.writer.SetFields(ctx, itemID, code, values)
	if err != nil {
		var fieldErr *meta.FieldError
		if errors.As(err, &fieldErr) {
			httpx.WriteError(ctx, w, httpx.BadRequest("invalid_field", fieldErr.Err.Error()).
				WithDetails(map[string]any{"field": string(fieldErr.Field)}))
			return
		}
		requestctx.Logger(ctx).Error("write item metadata", zap.String("item_id", itemID), zap.String("locale", code), zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("meta_unavailable", "failed to store metadata", http.StatusInternalServerError))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, metaResponse{ItemID: itemID, Locale: code, Fields: written})
}

func (h *MetaHandlers) deleteMeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.writer == nil {
		httpx.WriteError(ctx, w, httpx.Unavailable("metadata store"))
		return
	}
	itemID, ok := itemParam(w, r)
	if !ok {
		return
	}
	code, ok := localeParam(w, r)
	if !ok {
		return
	}
	if err := h.writer.DeleteLocale(ctx, itemID, code); err != nil {
		requestctx.Logger(ctx).Error("delete item metadata", zap.String("item_id", itemID), zap.String("locale", code), zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("meta_unavailable", "failed to delete metadata", http.StatusInternalServerError))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MetaHandlers) supported(ctx context.Context, code string) bool {
	if h.settings == nil {
		return true
	}
	entries, err := h.settings.SupportedLocales(ctx)
	if err != nil {
		requestctx.Logger(ctx).Warn("read supported locales", zap.Error(err))
		return false
	}
	return locale.Contains(entries, code)
}
