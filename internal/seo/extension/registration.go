package extension

// Hook points the strategies attach to.
const (
	PointDocumentTitle = "pre_get_document_title"
	PointHead          = "wp_head"

	PointYoastTitle         = "wpseo_title"
	PointYoastDescription   = "wpseo_metadesc"
	PointYoastCanonical     = "wpseo_canonical"
	PointYoastOGTitle       = "wpseo_opengraph_title"
	PointYoastOGDescription = "wpseo_opengraph_desc"
	PointYoastOGImage       = "wpseo_opengraph_image"
	PointYoastLocale        = "wpseo_locale"

	PointRankMathTitle         = "rank_math/frontend/title"
	PointRankMathDescription   = "rank_math/frontend/description"
	PointRankMathCanonical     = "rank_math/frontend/canonical"
	PointRankMathOGTitle       = "rank_math/opengraph/facebook/og_title"
	PointRankMathOGDescription = "rank_math/opengraph/facebook/og_description"
	PointRankMathOGLocale      = "rank_math/opengraph/facebook/og_locale"

	PointAIOSEOTitle        = "aioseo_title"
	PointAIOSEODescription  = "aioseo_description"
	PointAIOSEOFacebookTags = "aioseo_facebook_tags"
	PointAIOSEOTwitterTags  = "aioseo_twitter_tags"
	PointAIOSEOOGLocale     = "aioseo_og_locale"
	PointAIOSEOCanonical    = "aioseo_canonical_url"
	PointAIOSEOSchema       = "aioseo_schema_output"
)

// CallbackCanonical is the host's own canonical link renderer on PointHead.
const CallbackCanonical = "rel_canonical"

// Priorities used by the strategies. The AIOSEO priority is high enough to
// run after the extension's own processing.
const (
	PriorityDefault = 10
	PriorityFilter  = 20
	PriorityAIOSEO  = 99999
	PriorityHead    = 1
)

// Registration is one declarative hook attachment: the host adapter
// registers Transform at Point with Priority.
type Registration struct {
	Point     string
	Priority  int
	Transform Transform
}

// Transform is one of StringFilter, TagMapFilter, GraphFilter, HeadEmitter or Removal.
type Transform interface {
	transformKind() string
}

// StringFilter replaces a single rendered value.
type StringFilter func(original string) string

// TagMapFilter rewrites a property->content map of social tags.
type TagMapFilter func(tags map[string]string) map[string]string

// GraphFilter rewrites a structured-data graph.
type GraphFilter func(graph []map[string]any) []map[string]any

// HeadEmitter renders markup printed into the document head.
type HeadEmitter func() string

// Removal unhooks a host callback from the registration point.
type Removal struct {
	Callback string
}

func (StringFilter) transformKind() string { return "string" }
func (TagMapFilter) transformKind() string { return "tag_map" }
func (GraphFilter) transformKind() string  { return "graph" }
func (HeadEmitter) transformKind() string  { return "emitter" }
func (Removal) transformKind() string      { return "removal" }

// TransformKind names the transform variant, for logging and previews.
func TransformKind(t Transform) string {
	if t == nil {
		return ""
	}
	return t.transformKind()
}
