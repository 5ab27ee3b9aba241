package meta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/config"
	pfirestore "github.com/giacomo1215/GGUniversalSEO/internal/platform/firestore"
)

func TestFirestoreBackendClosedProviderReadsAsAbsent(t *testing.T) {
	provider := pfirestore.NewProvider(config.FirestoreConfig{ProjectID: "test-project", EmulatorHost: "127.0.0.1:1"})
	require.NoError(t, provider.Close())

	backend := NewFirestoreBackend(provider, "seo_item_meta")

	_, _, err := backend.Get(context.Background(), "42", MetaKey("it_IT", FieldTitle))
	assert.ErrorIs(t, err, pfirestore.ErrProviderClosed)

	_, ok := NewAccessor(backend, nil).GetField(context.Background(), "42", "it_IT", FieldTitle)
	assert.False(t, ok)

	assert.ErrorIs(t, backend.Ping(context.Background()), pfirestore.ErrProviderClosed)

	err = NewWriter(backend).DeleteLocale(context.Background(), "42", "it_IT")
	assert.ErrorIs(t, err, pfirestore.ErrProviderClosed)
}
