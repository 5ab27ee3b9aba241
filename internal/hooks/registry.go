// Package hooks applies extension registrations the way a host filter system
// would: callbacks at a point run by ascending priority, ties in registration order.
package hooks

import (
	"sort"
	"strings"
	"sync"

	"github.com/giacomo1215/GGUniversalSEO/internal/seo/extension"
)

type entry struct {
	priority  int
	seq       int
	transform extension.Transform
}

// Registry holds the registrations of one request.
type Registry struct {
	mu      sync.RWMutex
	seq     int
	points  map[string][]entry
	removed map[string]map[string]bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		points:  make(map[string][]entry),
		removed: make(map[string]map[string]bool),
	}
}

// Register adds registrations. Removals are recorded separately and never run.
func (r *Registry) Register(regs ...extension.Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range regs {
		if reg.Transform == nil || reg.Point == "" {
			continue
		}
		if removal, ok := reg.Transform.(extension.Removal); ok {
			if r.removed[reg.Point] == nil {
				r.removed[reg.Point] = make(map[string]bool)
			}
			r.removed[reg.Point][removal.Callback] = true
			continue
		}
		r.seq++
		list := append(r.points[reg.Point], entry{priority: reg.Priority, seq: r.seq, transform: reg.Transform})
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].priority != list[j].priority {
				return list[i].priority < list[j].priority
			}
			return list[i].seq < list[j].seq
		})
		r.points[reg.Point] = list
	}
}

// ApplyString runs the string filters at point over value.
func (r *Registry) ApplyString(point, value string) string {
	for _, e := range r.entries(point) {
		if f, ok := e.transform.(extension.StringFilter); ok {
			value = f(value)
		}
	}
	return value
}

// ApplyTagMap runs the tag-map filters at point over tags.
func (r *Registry) ApplyTagMap(point string, tags map[string]string) map[string]string {
	for _, e := range r.entries(point) {
		if f, ok := e.transform.(extension.TagMapFilter); ok {
			tags = f(tags)
		}
	}
	return tags
}

// ApplyGraph runs the graph filters at point over graph.
func (r *Registry) ApplyGraph(point string, graph []map[string]any) []map[string]any {
	for _, e := range r.entries(point) {
		if f, ok := e.transform.(extension.GraphFilter); ok {
			graph = f(graph)
		}
	}
	return graph
}

// Emit concatenates the output of the emitters at point.
func (r *Registry) Emit(point string) string {
	var b strings.Builder
	for _, e := range r.entries(point) {
		if f, ok := e.transform.(extension.HeadEmitter); ok {
			b.WriteString(f())
		}
	}
	return b.String()
}

// Points lists the points with at least one callback, sorted.
func (r *Registry) Points() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.points))
	for point := range r.points {
		out = append(out, point)
	}
	sort.Strings(out)
	return out
}

// Removals lists unhooked callbacks as point -> callbacks, sorted.
func (r *Registry) Removals() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string, len(r.removed))
	for point, callbacks := range r.removed {
		for cb := range callbacks {
			out[point] = append(out[point], cb)
		}
		sort.Strings(out[point])
	}
	return out
}

// Kinds returns the transform kinds registered at point, in run order.
func (r *Registry) Kinds(point string) []string {
	entries := r.entries(point)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, extension.TransformKind(e.transform))
	}
	return out
}

func (r *Registry) entries(point string) []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.points[point]
	out := make([]entry, len(list))
	copy(out, list)
	return out
}
