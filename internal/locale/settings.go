package locale

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/textutil"
)

// Settings exposes the operator-configured supported locales.
type Settings interface {
	SupportedLocales(ctx context.Context) ([]Entry, error)
}

// Store is a Settings source that can also persist an updated list.
type Store interface {
	Settings
	SaveLocales(ctx context.Context, entries []Entry) ([]Entry, error)
}

// SeedEntries is the list written when no settings exist yet.
func SeedEntries() []Entry {
	return []Entry{{Code: "en_US", Label: "English"}}
}

// Sanitize prepares operator input for persistence: codes are stripped to
// [a-zA-Z0-9_-], labels lose any markup, and entries without a code are dropped.
func Sanitize(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		code := SanitizeCode(entry.Code)
		if code == "" {
			continue
		}
		out = append(out, Entry{Code: code, Label: textutil.PlainText(entry.Label)})
	}
	return out
}

type settingsDocument struct {
	Locales []Entry `yaml:"locales"`
}

// FileSettings reads supported locales from a YAML document and re-reads it
// whenever the file changes on disk.
type FileSettings struct {
	path string

	mu      sync.RWMutex
	entries []Entry
	modTime time.Time
	size    int64
	loaded  bool
}

// NewFileSettings returns a settings source backed by path.
func NewFileSettings(path string) *FileSettings {
	return &FileSettings{path: path}
}

// Path returns the settings file location.
func (s *FileSettings) Path() string { return s.path }

// Seed writes the default entry list when the settings file does not exist yet.
func (s *FileSettings) Seed(ctx context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("locale: stat settings: %w", err)
	}
	_, err := s.SaveLocales(ctx, SeedEntries())
	return err
}

// SupportedLocales returns the entries from the settings file. A missing file yields an empty list.
func (s *FileSettings) SupportedLocales(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("locale: stat settings: %w", err)
	}

	s.mu.RLock()
	if s.loaded && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		out := cloneEntries(s.entries)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("locale: read settings: %w", err)
	}
	var doc settingsDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("locale: parse settings %s: %w", s.path, err)
	}
	entries := Normalize(doc.Locales)

	s.mu.Lock()
	s.entries = entries
	s.modTime = info.ModTime()
	s.size = info.Size()
	s.loaded = true
	s.mu.Unlock()

	return cloneEntries(entries), nil
}

// SaveLocales sanitizes entries and replaces the settings file atomically.
func (s *FileSettings) SaveLocales(ctx context.Context, entries []Entry) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := Sanitize(entries)

	raw, err := yaml.Marshal(settingsDocument{Locales: clean})
	if err != nil {
		return nil, fmt.Errorf("locale: encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("locale: create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".locales-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("locale: create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("locale: write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("locale: write settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("locale: replace settings: %w", err)
	}

	// force the next read to pick up the new file
	s.loaded = false
	return cloneEntries(clean), nil
}

// StaticSettings is an in-memory Store.
type StaticSettings struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStaticSettings returns a Store holding entries after load normalization.
func NewStaticSettings(entries ...Entry) *StaticSettings {
	return &StaticSettings{entries: Normalize(entries)}
}

// SupportedLocales implements Settings.
func (s *StaticSettings) SupportedLocales(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries), nil
}

// SaveLocales implements Store.
func (s *StaticSettings) SaveLocales(ctx context.Context, entries []Entry) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := Sanitize(entries)
	s.mu.Lock()
	s.entries = clean
	s.mu.Unlock()
	return cloneEntries(clean), nil
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
