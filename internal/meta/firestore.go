package meta

import (
	"context"
	"fmt"

	pfirestore "github.com/giacomo1215/GGUniversalSEO/internal/platform/firestore"
)

const pingDocument = "_ping"

// FirestoreBackend stores one document per item; each meta key is a top-level field.
type FirestoreBackend struct {
	repo *pfirestore.BaseRepository[map[string]any]
}

// NewFirestoreBackend binds the backend to collection.
func NewFirestoreBackend(provider *pfirestore.Provider, collection string) *FirestoreBackend {
	return &FirestoreBackend{
		repo: pfirestore.NewBaseRepository(provider, collection, pfirestore.MapDecoder()),
	}
}

// Get implements Backend. A missing document reads as absent.
func (f *FirestoreBackend) Get(ctx context.Context, itemID, key string) (any, bool, error) {
	doc, err := f.repo.Get(ctx, itemID)
	if err != nil {
		if pfirestore.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	value, ok := doc.Data[key]
	return value, ok, nil
}

// Set implements Backend.
func (f *FirestoreBackend) Set(ctx context.Context, itemID, key, value string) error {
	return f.repo.Merge(ctx, itemID, map[string]any{key: value})
}

// Delete implements Backend.
func (f *FirestoreBackend) Delete(ctx context.Context, itemID, key string) error {
	return f.repo.DeleteFields(ctx, itemID, key)
}

// Ping reads a probe document. A missing document still proves the backend is reachable.
func (f *FirestoreBackend) Ping(ctx context.Context) error {
	_, err := f.repo.Get(ctx, pingDocument)
	switch {
	case err == nil, pfirestore.IsNotFound(err):
		return nil
	case pfirestore.IsUnavailable(err):
		return fmt.Errorf("meta: firestore unavailable: %w", err)
	default:
		return err
	}
}
