package locale

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsEmptyCodes(t *testing.T) {
	got := Normalize([]Entry{
		{Code: "it_IT", Label: " Italiano "},
		{Code: " !! ", Label: "broken"},
		{Code: "it_IT", Label: "duplicate"},
		{Code: "fr FR", Label: "Français"},
	})
	assert.Equal(t, []Entry{
		{Code: "it_IT", Label: "Italiano"},
		{Code: "it_IT", Label: "duplicate"},
		{Code: "frFR", Label: "Français"},
	}, got)

	assert.True(t, Contains(got, "it_IT"))
	assert.False(t, Contains(got, "it_it"), "matching is exact")
	assert.False(t, Contains(got, ""))
	label, ok := Label(got, "it_IT")
	assert.True(t, ok)
	assert.Equal(t, "Italiano", label, "first match wins")
}

func TestMergePublishedLocales(t *testing.T) {
	existing := []Entry{{Code: "en_US", Label: "English"}, {Code: "it_IT", Label: "Italiano"}}

	merged, added := Merge(existing, []string{"it_IT", "fr_FR", " ", "fr_FR", "de DE"})
	require.Len(t, added, 2)
	assert.Equal(t, []string{"en_US", "it_IT", "fr_FR", "deDE"}, Codes(merged))
	assert.Equal(t, existing, merged[:2], "existing entries keep their labels")
	assert.Equal(t, "fr_FR", added[0].Code)
	assert.Contains(t, added[0].Label, "français")
	assert.Len(t, existing, 2, "input is not mutated")

	merged, added = Merge(existing, nil)
	assert.Equal(t, existing, merged)
	assert.Empty(t, added)
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "italiano", DisplayLabel("it"))
	assert.Contains(t, DisplayLabel("pt_BR"), "português")
	assert.Equal(t, "123", DisplayLabel("123"), "non-tags are returned as is")
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode(" it_IT<script> ")
	require.NoError(t, err)
	assert.Equal(t, "it_ITscript", code)

	_, err = ParseCode("%%")
	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestFileSettingsSeedAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "conf", "locales.yaml")
	s := NewFileSettings(path)

	entries, err := s.SupportedLocales(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "missing file yields no locales")

	require.NoError(t, s.Seed(ctx))
	entries, err = s.SupportedLocales(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedEntries(), entries)

	doc := "locales:\n  - code: en_US\n    label: English\n  - code: it_IT\n    label: Italiano\n  - code: \"\"\n    label: empty\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	entries, err = s.SupportedLocales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en_US", "it_IT"}, Codes(entries))

	// existing settings are never overwritten by Seed
	require.NoError(t, s.Seed(ctx))
	entries, err = s.SupportedLocales(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileSettingsSaveSanitizes(t *testing.T) {
	ctx := context.Background()
	s := NewFileSettings(filepath.Join(t.TempDir(), "locales.yaml"))

	saved, err := s.SaveLocales(ctx, []Entry{
		{Code: "it_IT", Label: "<b>Italiano</b>"},
		{Code: "   ", Label: "nothing"},
		{Code: "de-DE!", Label: " Deutsch "},
	})
	require.NoError(t, err)
	want := []Entry{{Code: "it_IT", Label: "Italiano"}, {Code: "de-DE", Label: "Deutsch"}}
	assert.Equal(t, want, saved)

	loaded, err := s.SupportedLocales(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, loaded)
}

func TestFileSettingsRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locales.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locales: [oops"), 0o600))

	_, err := NewFileSettings(path).SupportedLocales(context.Background())
	assert.Error(t, err)
}

func TestStaticSettings(t *testing.T) {
	ctx := context.Background()
	s := NewStaticSettings(Entry{Code: "en_US", Label: "English"}, Entry{Code: "", Label: "skip"})

	entries, err := s.SupportedLocales(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en_US"}, Codes(entries))

	entries[0].Code = "mutated"
	again, _ := s.SupportedLocales(ctx)
	assert.Equal(t, "en_US", again[0].Code, "callers receive copies")

	_, err = s.SaveLocales(ctx, []Entry{{Code: "fr_FR", Label: "Français"}})
	require.NoError(t, err)
	entries, _ = s.SupportedLocales(ctx)
	assert.Equal(t, []string{"fr_FR"}, Codes(entries))
}
