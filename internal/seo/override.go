package seo

import "github.com/giacomo1215/GGUniversalSEO/internal/meta"

// Item identifies the content item a request renders.
type Item struct {
	ID       string
	Singular bool
}

// OverrideSet holds the effective per-locale overrides for one item. A nil
// field means no override; strategies leave the original output untouched.
type OverrideSet struct {
	Locale        string  `json:"locale"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	OGTitle       *string `json:"og_title,omitempty"`
	OGDescription *string `json:"og_description,omitempty"`
	OGImage       *string `json:"og_image,omitempty"`
	CanonicalURL  *string `json:"canonical_url,omitempty"`
}

// IsEmpty reports whether every field is absent.
func (s OverrideSet) IsEmpty() bool {
	return s.Title == nil && s.Description == nil && s.OGTitle == nil &&
		s.OGDescription == nil && s.OGImage == nil && s.CanonicalURL == nil
}

// Get returns the value for field when present.
func (s OverrideSet) Get(field meta.Field) (string, bool) {
	var ptr *string
	switch field {
	case meta.FieldTitle:
		ptr = s.Title
	case meta.FieldDescription:
		ptr = s.Description
	case meta.FieldOGTitle:
		ptr = s.OGTitle
	case meta.FieldOGDescription:
		ptr = s.OGDescription
	case meta.FieldOGImage:
		ptr = s.OGImage
	case meta.FieldCanonicalURL:
		ptr = s.CanonicalURL
	}
	if ptr == nil {
		return "", false
	}
	return *ptr, true
}

// Present lists the fields carrying a value, in storage order.
func (s OverrideSet) Present() []meta.Field {
	out := make([]meta.Field, 0, len(meta.Fields))
	for _, f := range meta.Fields {
		if _, ok := s.Get(f); ok {
			out = append(out, f)
		}
	}
	return out
}

func newOverrideSet(locale string, values map[meta.Field]string) OverrideSet {
	set := OverrideSet{Locale: locale}
	pick := func(f meta.Field) *string {
		if v, ok := values[f]; ok {
			return &v
		}
		return nil
	}
	set.Title = pick(meta.FieldTitle)
	set.Description = pick(meta.FieldDescription)
	set.OGTitle = pick(meta.FieldOGTitle)
	set.OGDescription = pick(meta.FieldOGDescription)
	set.OGImage = pick(meta.FieldOGImage)
	set.CanonicalURL = pick(meta.FieldCanonicalURL)

	if set.OGTitle == nil {
		set.OGTitle = set.Title
	}
	if set.OGDescription == nil {
		set.OGDescription = set.Description
	}
	return set
}
