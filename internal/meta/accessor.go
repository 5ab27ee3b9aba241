package meta

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/observability"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
)

// Accessor reads override values for an item and locale. A value is present
// only when it is a string that is non-empty after trimming.
type Accessor struct {
	backend Backend
	logger  *zap.Logger
}

// NewAccessor wraps backend.
func NewAccessor(backend Backend, logger *zap.Logger) *Accessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accessor{backend: backend, logger: logger}
}

// GetField returns the trimmed stored value and whether it is present.
// Storage errors are logged and reported as absent.
func (a *Accessor) GetField(ctx context.Context, itemID, locale string, field Field) (string, bool) {
	if a == nil || a.backend == nil || strings.TrimSpace(itemID) == "" {
		return "", false
	}
	key := MetaKey(locale, field)
	raw, ok, err := a.backend.Get(ctx, itemID, key)
	if err != nil {
		requestctx.LoggerOr(ctx, a.logger).Debug("meta read failed",
			zap.String("item", observability.SanitizeToken(itemID)),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", false
	}
	if !ok {
		return "", false
	}
	value, isString := raw.(string)
	if !isString {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// GetFields reads every field for the item and locale, omitting absent ones.
func (a *Accessor) GetFields(ctx context.Context, itemID, locale string) map[Field]string {
	out := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		if value, ok := a.GetField(ctx, itemID, locale, f); ok {
			out[f] = value
		}
	}
	return out
}
