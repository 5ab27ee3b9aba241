package meta

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryBackend keeps metadata in process memory. It is safe for concurrent use.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]map[string]any
}

// NewMemoryBackend returns an empty in-memory store.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]map[string]any)}
}

// seedDocument is the YAML layout accepted by LoadMemorySeed:
//
//	items:
//	  "42":
//	    it_IT:
//	      title: Chi siamo
//	      og_image: https://example.com/it.jpg
type seedDocument struct {
	Items map[string]map[string]map[string]any `yaml:"items"`
}

// LoadMemorySeed builds a MemoryBackend from a YAML seed file. Unknown field
// names are rejected; values are stored as decoded so non-string values stay
// unreadable through the Accessor.
func LoadMemorySeed(path string) (*MemoryBackend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meta: read seed: %w", err)
	}
	var doc seedDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("meta: parse seed %s: %w", path, err)
	}

	backend := NewMemoryBackend()
	for itemID, locales := range doc.Items {
		itemID = strings.TrimSpace(itemID)
		if itemID == "" {
			continue
		}
		for loc, fields := range locales {
			for name, value := range fields {
				field, ok := ParseField(name)
				if !ok {
					return nil, fmt.Errorf("meta: seed item %s locale %s: unknown field %q", itemID, loc, name)
				}
				backend.put(itemID, MetaKey(loc, field), value)
			}
		}
	}
	return backend, nil
}

// Get implements Backend.
func (m *MemoryBackend) Get(ctx context.Context, itemID, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[itemID][key]
	return value, ok, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(ctx context.Context, itemID, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.put(itemID, key, value)
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(ctx context.Context, itemID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.items[itemID]
	if !ok {
		return nil
	}
	delete(fields, key)
	if len(fields) == 0 {
		delete(m.items, itemID)
	}
	return nil
}

func (m *MemoryBackend) put(itemID, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.items[itemID]
	if !ok {
		fields = make(map[string]any)
		m.items[itemID] = fields
	}
	fields[key] = value
}
