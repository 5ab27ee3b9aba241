package locale

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Provider is a localization source consulted by the Detector. Current and
// Default return "" when the provider has no opinion for the request.
type Provider interface {
	Name() string
	Current(r *http.Request) (string, error)
	Default() (string, error)
}

// Publisher is implemented by providers that know the full set of
// languages the site publishes, not only the one active for a request.
type Publisher interface {
	Published() []string
}

// VarProvider reads the locale from a request variable: the query parameter
// first, then a cookie of the same name.
type VarProvider struct {
	name string
}

// NewVarProvider returns a provider reading the variable name.
func NewVarProvider(name string) *VarProvider {
	return &VarProvider{name: strings.TrimSpace(name)}
}

func (p *VarProvider) Name() string { return "request-var" }

func (p *VarProvider) Current(r *http.Request) (string, error) {
	if p.name == "" {
		return "", nil
	}
	if value := strings.TrimSpace(r.URL.Query().Get(p.name)); value != "" {
		return value, nil
	}
	cookie, err := r.Cookie(p.name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(cookie.Value), nil
}

func (p *VarProvider) Default() (string, error) { return "", nil }

// PathProvider resolves the locale from the first path segment through a
// slug table, e.g. /it/chi-siamo -> it_IT. When a default language is
// configured it is returned for paths without a known slug.
type PathProvider struct {
	slugs    map[string]string
	fallback string
}

// NewPathProvider returns a provider for the slug table. Slugs are matched case-insensitively.
func NewPathProvider(slugs map[string]string, fallback string) *PathProvider {
	table := make(map[string]string, len(slugs))
	for slug, loc := range slugs {
		slug = strings.ToLower(strings.Trim(strings.TrimSpace(slug), "/"))
		loc = strings.TrimSpace(loc)
		if slug == "" || loc == "" {
			continue
		}
		table[slug] = loc
	}
	return &PathProvider{slugs: table, fallback: strings.TrimSpace(fallback)}
}

func (p *PathProvider) Name() string { return "url-path" }

func (p *PathProvider) Current(r *http.Request) (string, error) {
	if loc, ok := p.match(r.URL.Path); ok {
		return loc, nil
	}
	return p.fallback, nil
}

func (p *PathProvider) Default() (string, error) { return p.fallback, nil }

// Published returns the default language followed by the slug table
// locales ordered by slug.
func (p *PathProvider) Published() []string {
	out := make([]string, 0, len(p.slugs)+1)
	if p.fallback != "" {
		out = append(out, p.fallback)
	}
	return append(out, sortedValues(p.slugs)...)
}

func (p *PathProvider) match(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", false
	}
	segment, _, _ := strings.Cut(trimmed, "/")
	loc, ok := p.slugs[strings.ToLower(segment)]
	return loc, ok
}

// AcceptLanguageProvider negotiates the Accept-Language header against a
// list of region-qualified locales (it_IT, en_US, ...).
type AcceptLanguageProvider struct {
	locales []string
	matcher language.Matcher
}

// NewAcceptLanguageProvider returns a provider matching against locales.
// Locales that do not parse as BCP 47 tags are skipped.
func NewAcceptLanguageProvider(locales []string) *AcceptLanguageProvider {
	p := &AcceptLanguageProvider{}
	tags := make([]language.Tag, 0, len(locales))
	for _, loc := range locales {
		loc = strings.TrimSpace(loc)
		tag, err := language.Parse(LangAttr(loc))
		if err != nil {
			continue
		}
		p.locales = append(p.locales, loc)
		tags = append(tags, tag)
	}
	if len(tags) > 0 {
		p.matcher = language.NewMatcher(tags)
	}
	return p
}

func (p *AcceptLanguageProvider) Name() string { return "accept-language" }

func (p *AcceptLanguageProvider) Current(r *http.Request) (string, error) {
	if p.matcher == nil {
		return "", nil
	}
	header := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if header == "" {
		return "", nil
	}
	preferred, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", err
	}
	if len(preferred) == 0 {
		return "", nil
	}
	_, index, confidence := p.matcher.Match(preferred...)
	if confidence == language.No || index < 0 || index >= len(p.locales) {
		return "", nil
	}
	return p.locales[index], nil
}

func (p *AcceptLanguageProvider) Default() (string, error) {
	if len(p.locales) == 0 {
		return "", nil
	}
	return p.locales[0], nil
}

// Published returns the negotiable locales in configured order.
func (p *AcceptLanguageProvider) Published() []string {
	return append([]string(nil), p.locales...)
}

// CodeProvider reads a short language code published by the host in a
// request header and maps it to a full locale through its table, falling
// back to ToOG for unmapped codes.
type CodeProvider struct {
	header      string
	table       map[string]string
	defaultCode string
}

// NewCodeProvider returns a provider reading header. Table keys are matched case-insensitively.
func NewCodeProvider(header string, table map[string]string, defaultCode string) *CodeProvider {
	mapped := make(map[string]string, len(table))
	for code, loc := range table {
		code = strings.ToLower(strings.TrimSpace(code))
		loc = strings.TrimSpace(loc)
		if code == "" || loc == "" {
			continue
		}
		mapped[code] = loc
	}
	return &CodeProvider{
		header:      strings.TrimSpace(header),
		table:       mapped,
		defaultCode: strings.TrimSpace(defaultCode),
	}
}

func (p *CodeProvider) Name() string { return "language-code" }

func (p *CodeProvider) Current(r *http.Request) (string, error) {
	if p.header == "" {
		return "", nil
	}
	return p.resolve(r.Header.Get(p.header)), nil
}

func (p *CodeProvider) Default() (string, error) {
	return p.resolve(p.defaultCode), nil
}

func (p *CodeProvider) resolve(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if loc, ok := p.table[strings.ToLower(code)]; ok {
		return loc
	}
	return ToOG(code)
}

// Published returns the locale of the default code followed by the table
// locales ordered by code.
func (p *CodeProvider) Published() []string {
	out := make([]string, 0, len(p.table)+1)
	if def := p.resolve(p.defaultCode); def != "" {
		out = append(out, def)
	}
	return append(out, sortedValues(p.table)...)
}

func sortedValues(table map[string]string) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, table[key])
	}
	return out
}
