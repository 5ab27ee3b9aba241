package seo

import (
	"net/http"

	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
)

// RequestLocale returns the request locale, detected once per request State.
func RequestLocale(r *http.Request, detector *locale.Detector) string {
	return StateFrom(r.Context()).Locale(func() string { return detector.DetectLocale(r) })
}

// RequestDefaultLocale returns the site default locale, resolved once per request State.
func RequestDefaultLocale(r *http.Request, detector *locale.Detector) string {
	return StateFrom(r.Context()).DefaultLocale(detector.DefaultLocale)
}

// StateMiddleware attaches a fresh State to every request.
func StateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), NewState())))
	})
}
