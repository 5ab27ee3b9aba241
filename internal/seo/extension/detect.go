// Package extension detects the SEO extension active on the host and builds
// the filter registrations that inject overrides into it.
package extension

import (
	"strings"

	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
)

// Kind identifies the SEO extension whose output the overrides target.
type Kind string

const (
	KindNone     Kind = "none"
	KindYoast    Kind = "yoast"
	KindRankMath Kind = "rankmath"
	KindAIOSEO   Kind = "aioseo"
)

// Markers the host exposes when an extension is loaded.
const (
	MarkerYoast         = "WPSEO_VERSION"
	MarkerRankMath      = `RankMath\Helper`
	MarkerAIOSEOVersion = "AIOSEO_VERSION"
	MarkerAIOSEO        = "aioseo"
)

// Probe answers whether a marker is present on the host.
type Probe interface {
	Has(marker string) bool
}

// Detect maps the markers reported by probe to a Kind. The order is fixed:
// Yoast, then RankMath, then AIOSEO.
func Detect(probe Probe) Kind {
	if probe == nil {
		return KindNone
	}
	switch {
	case probe.Has(MarkerYoast):
		return KindYoast
	case probe.Has(MarkerRankMath):
		return KindRankMath
	case probe.Has(MarkerAIOSEOVersion), probe.Has(MarkerAIOSEO):
		return KindAIOSEO
	default:
		return KindNone
	}
}

// DetectOnce memoizes detection on the request state.
func DetectOnce(state *seo.State, probe Probe) Kind {
	kind, _ := state.Memo("extension.kind", func() any { return Detect(probe) }).(Kind)
	if kind == "" {
		return KindNone
	}
	return kind
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindNone:
		return KindNone, true
	case KindYoast:
		return KindYoast, true
	case KindRankMath:
		return KindRankMath, true
	case KindAIOSEO:
		return KindAIOSEO, true
	}
	return "", false
}

// Markers is a static marker set, typically configured or reported by the host shim.
type Markers map[string]struct{}

// NewMarkers builds a set from the given names, ignoring blanks.
func NewMarkers(names ...string) Markers {
	m := make(Markers, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			m[name] = struct{}{}
		}
	}
	return m
}

// Has implements Probe.
func (m Markers) Has(marker string) bool {
	_, ok := m[marker]
	return ok
}

// AnyProbe reports a marker when any of its probes does.
type AnyProbe []Probe

// Has implements Probe.
func (a AnyProbe) Has(marker string) bool {
	for _, p := range a {
		if p != nil && p.Has(marker) {
			return true
		}
	}
	return false
}
