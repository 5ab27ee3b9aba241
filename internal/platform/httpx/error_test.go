package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "trace-1"})
	rec := httptest.NewRecorder()

	WriteError(ctx, rec, NewError("invalid_locale", "locale\ncode is empty", http.StatusBadRequest).
		WithDetails(map[string]any{"field": "code"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_locale", body["error"])
	require.Equal(t, "locale code is empty", body["message"])
	require.Equal(t, "trace-1", body["trace_id"])
	require.Equal(t, "code", body["field"])
	require.EqualValues(t, http.StatusBadRequest, body["status"])
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	err := NewError("boom", "boom", 0)
	require.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestDetailsDoNotReplaceEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, Unavailable("settings store").
		WithDetails(map[string]any{"error": "spoofed", "store": "file"}).
		WithDetails(map[string]any{"path": "/etc/seo/locales.yaml"}))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "service_unavailable", body["error"])
	require.Equal(t, "settings store unavailable", body["message"])
	require.Equal(t, "file", body["store"])
	require.Equal(t, "/etc/seo/locales.yaml", body["path"])
	require.NotContains(t, body, "trace_id")
}

func TestErrorString(t *testing.T) {
	err := BadRequest("invalid_item", "item id must be a positive integer")
	require.Equal(t, "400 invalid_item: item id must be a positive integer", err.Error())
}
