package seo

import (
	"context"
	"sync"
)

type stateKey struct{}

type setKey struct {
	item   string
	locale string
}

// State memoizes per-request decisions: the detected and default locale,
// resolved override sets, and arbitrary values such as the detected SEO
// extension. A nil *State computes every value without caching.
type State struct {
	mu     sync.Mutex
	locale *string
	def    *string
	sets   map[setKey]OverrideSet
	values map[string]any
}

// NewState returns an empty request state.
func NewState() *State {
	return &State{
		sets:   make(map[setKey]OverrideSet),
		values: make(map[string]any),
	}
}

// WithState attaches state to ctx.
func WithState(ctx context.Context, state *State) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// StateFrom returns the State attached to ctx, or nil.
func StateFrom(ctx context.Context) *State {
	if ctx == nil {
		return nil
	}
	state, _ := ctx.Value(stateKey{}).(*State)
	return state
}

// Locale returns the memoized request locale, computing it on first use.
func (s *State) Locale(compute func() string) string {
	if s == nil {
		return compute()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locale == nil {
		v := compute()
		s.locale = &v
	}
	return *s.locale
}

// DefaultLocale returns the memoized default locale, computing it on first use.
func (s *State) DefaultLocale(compute func() string) string {
	if s == nil {
		return compute()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.def == nil {
		v := compute()
		s.def = &v
	}
	return *s.def
}

// Memo returns the value stored under key, computing it on first use.
func (s *State) Memo(key string, compute func() any) any {
	if s == nil {
		return compute()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	v := compute()
	s.values[key] = v
	return v
}

func (s *State) cachedSet(item, locale string) (OverrideSet, bool) {
	if s == nil {
		return OverrideSet{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[setKey{item: item, locale: locale}]
	return set, ok
}

func (s *State) storeSet(item, locale string, set OverrideSet) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[setKey{item: item, locale: locale}] = set
}
