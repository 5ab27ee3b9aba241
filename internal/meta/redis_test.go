package meta

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisBackend(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBackend(client, "seo:item:"), mr
}

func TestRedisBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, mr := setupRedisBackend(t)
	require.NoError(t, backend.Ping(ctx))

	key := MetaKey("it_IT", FieldTitle)
	require.NoError(t, backend.Set(ctx, "42", key, "Chi siamo"))
	assert.Equal(t, "Chi siamo", mr.HGet("seo:item:42", key))

	value, ok, err := backend.Get(ctx, "42", key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Chi siamo", value)

	require.NoError(t, backend.Delete(ctx, "42", key))
	_, ok, err = backend.Get(ctx, "42", key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBackendWithWriterAndAccessor(t *testing.T) {
	ctx := context.Background()
	backend, _ := setupRedisBackend(t)

	_, err := NewWriter(backend).SetFields(ctx, "9", "fr_FR", map[Field]string{
		FieldTitle:        "À propos",
		FieldCanonicalURL: "https://example.com/fr/a-propos",
	})
	require.NoError(t, err)

	got := NewAccessor(backend, nil).GetFields(ctx, "9", "fr_FR")
	assert.Equal(t, map[Field]string{
		FieldTitle:        "À propos",
		FieldCanonicalURL: "https://example.com/fr/a-propos",
	}, got)
}

func TestRedisBackendUnavailableReadsAsAbsent(t *testing.T) {
	backend, mr := setupRedisBackend(t)
	mr.Close()

	_, ok := NewAccessor(backend, nil).GetField(context.Background(), "42", "it_IT", FieldTitle)
	assert.False(t, ok)
}
