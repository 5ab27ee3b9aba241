package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/giacomo1215/GGUniversalSEO/internal/seo/extension"
)

func appendFilter(suffix string) extension.StringFilter {
	return func(v string) string { return v + suffix }
}

func TestApplyStringOrdersByPriorityThenRegistration(t *testing.T) {
	r := New()
	r.Register(
		extension.Registration{Point: "title", Priority: 20, Transform: appendFilter("-b")},
		extension.Registration{Point: "title", Priority: 10, Transform: appendFilter("-a")},
		extension.Registration{Point: "title", Priority: 20, Transform: appendFilter("-c")},
	)
	r.Register(extension.Registration{Point: "title", Priority: 5, Transform: appendFilter("-first")})

	assert.Equal(t, "x-first-a-b-c", r.ApplyString("title", "x"))
	assert.Equal(t, "x", r.ApplyString("other", "x"))
}

func TestApplyIgnoresMismatchedTransforms(t *testing.T) {
	r := New()
	r.Register(
		extension.Registration{Point: "p", Priority: 1, Transform: extension.HeadEmitter(func() string { return "<meta>" })},
		extension.Registration{Point: "p", Priority: 2, Transform: appendFilter("!")},
		extension.Registration{Point: "p", Priority: 3, Transform: extension.TagMapFilter(func(m map[string]string) map[string]string {
			m["k"] = "v"
			return m
		})},
		extension.Registration{Point: "p", Priority: 4, Transform: extension.GraphFilter(func(g []map[string]any) []map[string]any {
			return append(g, map[string]any{"@type": "Thing"})
		})},
		extension.Registration{Point: "", Priority: 1, Transform: appendFilter("?")},
		extension.Registration{Point: "p", Priority: 1},
	)

	assert.Equal(t, "x!", r.ApplyString("p", "x"))
	assert.Equal(t, "<meta>", r.Emit("p"))
	assert.Equal(t, map[string]string{"k": "v"}, r.ApplyTagMap("p", map[string]string{}))
	assert.Len(t, r.ApplyGraph("p", nil), 1)
	assert.Equal(t, []string{"emitter", "string", "tag_map", "graph"}, r.Kinds("p"))
	assert.Equal(t, []string{"p"}, r.Points())
}

func TestRemovals(t *testing.T) {
	r := New()
	r.Register(
		extension.Registration{Point: "wp_head", Priority: 10, Transform: extension.Removal{Callback: "rel_canonical"}},
		extension.Registration{Point: "wp_head", Priority: 10, Transform: extension.Removal{Callback: "adjacent_posts_rel_link"}},
	)

	assert.NotContains(t, r.Removals(), "wp_footer")
	assert.Empty(t, r.Points(), "removals are not callbacks")
	assert.Equal(t, map[string][]string{"wp_head": {"adjacent_posts_rel_link", "rel_canonical"}}, r.Removals())
	assert.Empty(t, r.Emit("wp_head"))
}
