package meta

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/textutil"
)

// ErrInvalidURL is returned when a URL field is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("meta: invalid url")

// FieldError reports which field failed validation.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("meta: field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Writer persists operator-entered overrides using the same key layout the Accessor reads.
type Writer struct {
	backend Backend
}

// NewWriter wraps backend.
func NewWriter(backend Backend) *Writer {
	return &Writer{backend: backend}
}

// SetFields validates and stores values for the item and locale. Text fields
// lose any markup, URL fields must be absolute http(s) URLs, and an empty
// value deletes the stored key. Nothing is written when any field is invalid.
func (w *Writer) SetFields(ctx context.Context, itemID, locale string, values map[Field]string) (map[Field]string, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, errors.New("meta: item id is required")
	}
	if strings.TrimSpace(locale) == "" {
		return nil, errors.New("meta: locale is required")
	}

	clean := make(map[Field]string, len(values))
	for _, f := range Fields {
		raw, ok := values[f]
		if !ok {
			continue
		}
		value, err := cleanValue(f, raw)
		if err != nil {
			return nil, &FieldError{Field: f, Err: err}
		}
		clean[f] = value
	}

	for _, f := range Fields {
		value, ok := clean[f]
		if !ok {
			continue
		}
		key := MetaKey(locale, f)
		if value == "" {
			if err := w.backend.Delete(ctx, itemID, key); err != nil {
				return nil, fmt.Errorf("meta: delete %s: %w", key, err)
			}
			continue
		}
		if err := w.backend.Set(ctx, itemID, key, value); err != nil {
			return nil, fmt.Errorf("meta: set %s: %w", key, err)
		}
	}
	return clean, nil
}

// DeleteLocale removes every field stored for the item and locale.
func (w *Writer) DeleteLocale(ctx context.Context, itemID, locale string) error {
	for _, f := range Fields {
		key := MetaKey(locale, f)
		if err := w.backend.Delete(ctx, itemID, key); err != nil {
			return fmt.Errorf("meta: delete %s: %w", key, err)
		}
	}
	return nil
}

func cleanValue(f Field, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if !f.IsURL() {
		return textutil.PlainText(trimmed), nil
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}
	return u.String(), nil
}
