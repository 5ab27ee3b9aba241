package meta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemorySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `items:
  "42":
    it_IT:
      title: Chi siamo
      og_image: https://example.com/it.jpg
      description: 42
    en_US:
      title: About us
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	backend, err := LoadMemorySeed(path)
	require.NoError(t, err)

	a := NewAccessor(backend, nil)
	ctx := context.Background()

	got := a.GetFields(ctx, "42", "it_IT")
	assert.Equal(t, map[Field]string{
		FieldTitle:   "Chi siamo",
		FieldOGImage: "https://example.com/it.jpg",
	}, got)

	value, ok := a.GetField(ctx, "42", "en_US", FieldTitle)
	assert.True(t, ok)
	assert.Equal(t, "About us", value)
}

func TestLoadMemorySeedRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  \"1\":\n    en_US:\n      keywords: nope\n"), 0o600))

	_, err := LoadMemorySeed(path)
	assert.ErrorContains(t, err, "unknown field")
}

func TestMemoryBackendSetDelete(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	require.NoError(t, backend.Set(ctx, "7", "k", "v"))
	value, ok, err := backend.Get(ctx, "7", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	require.NoError(t, backend.Delete(ctx, "7", "k"))
	_, ok, err = backend.Get(ctx, "7", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Delete(ctx, "missing", "k"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = backend.Get(cancelled, "7", "k")
	assert.ErrorIs(t, err, context.Canceled)
}
