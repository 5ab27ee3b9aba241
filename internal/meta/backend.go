package meta

import "context"

// Backend is the per-item metadata store. Get returns the raw stored value so
// callers can decide how to treat non-string values.
type Backend interface {
	Get(ctx context.Context, itemID, key string) (any, bool, error)
	Set(ctx context.Context, itemID, key, value string) error
	Delete(ctx context.Context, itemID, key string) error
}
