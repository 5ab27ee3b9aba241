package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/httpx"
)

// RequireAdminToken guards the admin API with a static bearer token. An empty
// token disables the admin API entirely.
func RequireAdminToken(token string) func(http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(token))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if len(expected) == 0 {
				httpx.WriteError(ctx, w, httpx.NewError("admin_disabled", "admin API is not configured", http.StatusForbidden))
				return
			}
			presented, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="seo-admin"`)
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "bearer token required", http.StatusUnauthorized))
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				httpx.WriteError(ctx, w, httpx.NewError("forbidden", "invalid admin token", http.StatusForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
