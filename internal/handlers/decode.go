package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/httpx"
)

const maxRequestBody = 64 * 1024

func decodeJSON(r *http.Request, dst any) error {
	limited := io.LimitReader(r.Body, maxRequestBody)
	defer r.Body.Close()
	decoder := json.NewDecoder(limited)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// itemParam reads {itemID}, which must be a positive integer.
func itemParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemID"))
	if n, err := strconv.ParseUint(raw, 10, 64); err != nil || n == 0 {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_item", "item id must be a positive integer"))
		return "", false
	}
	return raw, true
}

// localeParam reads {locale}, rejecting codes that sanitization would alter.
func localeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "locale")
	code, err := locale.ParseCode(raw)
	if err != nil || code != raw {
		httpx.WriteError(r.Context(), w, httpx.BadRequest("invalid_locale", "locale code may only contain letters, digits, '_' and '-'"))
		return "", false
	}
	return code, true
}
