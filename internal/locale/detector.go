package locale

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/giacomo1215/GGUniversalSEO/internal/platform/requestctx"
)

// Detector determines the active locale by consulting providers in a fixed
// priority order. The first non-empty answer wins and later providers are
// not consulted. Provider failures are logged and treated as no answer.
type Detector struct {
	providers []Provider
	platform  string
	logger    *zap.Logger
}

// NewDetector builds a detector with the platform default locale and the
// providers in priority order. Nil providers are ignored.
func NewDetector(platform string, logger *zap.Logger, providers ...Provider) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Detector{
		providers: active,
		platform:  strings.TrimSpace(platform),
		logger:    logger,
	}
}

// Providers returns the names of the configured providers in priority order.
func (d *Detector) Providers() []string {
	names := make([]string, 0, len(d.providers))
	for _, p := range d.providers {
		names = append(names, p.Name())
	}
	return names
}

// DetectLocale returns the locale active for the request. It never fails:
// when no provider answers the platform locale is returned.
func (d *Detector) DetectLocale(r *http.Request) string {
	logger := d.requestLogger(r)
	for _, p := range d.providers {
		value, err := d.call(p, func() (string, error) { return p.Current(r) })
		if err != nil {
			logger.Debug("locale provider failed", zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return d.platform
}

// DefaultLocale returns the site default locale, asking providers in the same order.
func (d *Detector) DefaultLocale() string {
	for _, p := range d.providers {
		value, err := d.call(p, p.Default)
		if err != nil {
			d.logger.Debug("locale provider default failed", zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return d.platform
}

// Published collects the languages announced by providers implementing
// Publisher, in provider order and without repeats.
func (d *Detector) Published() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range d.providers {
		pub, ok := p.(Publisher)
		if !ok {
			continue
		}
		for _, loc := range pub.Published() {
			loc = strings.TrimSpace(loc)
			if loc == "" || seen[loc] {
				continue
			}
			seen[loc] = true
			out = append(out, loc)
		}
	}
	return out
}

// IsTranslatedRequest reports whether the request locale differs from the default locale.
func (d *Detector) IsTranslatedRequest(r *http.Request) bool {
	return d.DetectLocale(r) != d.DefaultLocale()
}

func (d *Detector) call(p Provider, fn func() (string, error)) (value string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value = ""
			err = fmt.Errorf("locale: provider %s panicked: %v", p.Name(), rec)
		}
	}()
	return fn()
}

func (d *Detector) requestLogger(r *http.Request) *zap.Logger {
	if r == nil {
		return d.logger
	}
	return requestctx.LoggerOr(r.Context(), d.logger)
}
