package seo

import (
	"context"

	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/meta"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
)

// FieldReader is the read side of the metadata store.
type FieldReader interface {
	GetField(ctx context.Context, itemID, locale string, field meta.Field) (string, bool)
}

// Resolver computes the effective OverrideSet for an item and locale.
type Resolver struct {
	reader   FieldReader
	settings locale.Settings
	logger   *zap.Logger
}

// NewResolver returns a Resolver reading values through reader and
// restricting locales to those published by settings.
func NewResolver(reader FieldReader, settings locale.Settings, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{reader: reader, settings: settings, logger: logger}
}

// Resolve returns the override set for item in loc. Non-singular items and
// unsupported locales resolve to an empty set without touching storage.
// When ctx carries a State the result is memoized per (item, locale).
func (r *Resolver) Resolve(ctx context.Context, item Item, loc string) OverrideSet {
	if !item.Singular || item.ID == "" {
		return OverrideSet{Locale: loc}
	}

	state := StateFrom(ctx)
	if set, ok := state.cachedSet(item.ID, loc); ok {
		return set
	}

	set := r.resolve(ctx, item, loc)
	state.storeSet(item.ID, loc, set)
	return set
}

func (r *Resolver) resolve(ctx context.Context, item Item, loc string) OverrideSet {
	if !r.supported(ctx, loc) {
		return OverrideSet{Locale: loc}
	}

	values := make(map[meta.Field]string, len(meta.Fields))
	for _, f := range meta.Fields {
		if v, ok := r.reader.GetField(ctx, item.ID, loc, f); ok {
			values[f] = v
		}
	}
	return newOverrideSet(loc, values)
}

func (r *Resolver) supported(ctx context.Context, loc string) bool {
	if r.settings == nil {
		return false
	}
	entries, err := r.settings.SupportedLocales(ctx)
	if err != nil {
		requestctx.LoggerOr(ctx, r.logger).Debug("supported locales unavailable", zap.Error(err))
		return false
	}
	return locale.Contains(entries, loc)
}
