package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultUpstreamTimeout = 20 * time.Second
	defaultItemHeader      = "X-Content-Item"
	defaultLocale          = "en_US"
	defaultLocalesFile     = "locales.yaml"
	defaultVarName         = "trp-lang"
	defaultCodeHeader      = "X-Language-Code"
	defaultMetaBackend     = MetaBackendMemory
	defaultRedisPrefix     = "seo:item:"
	defaultCollection      = "seo_item_meta"
	defaultMaxCapture      = 8 << 20
)

// Supported metadata storage backends.
const (
	MetaBackendMemory    = "memory"
	MetaBackendFirestore = "firestore"
	MetaBackendRedis     = "redis"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	Admin     AdminConfig
	Locale    LocaleConfig
	Meta      MetaConfig
	Firestore FirestoreConfig
	Extension ExtensionConfig
	Rewrite   RewriteConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// UpstreamConfig points at the content host whose pages are proxied.
type UpstreamConfig struct {
	URL        string
	Timeout    time.Duration
	ItemHeader string
}

// AdminConfig protects the settings and metadata write endpoints.
type AdminConfig struct {
	Token string
}

// LocaleConfig configures supported locales and the localization providers.
type LocaleConfig struct {
	Default      string
	SettingsFile string

	VarName string

	PathSlugs   map[string]string
	PathDefault string

	AcceptLocales []string

	CodeHeader  string
	CodeMap     map[string]string
	CodeDefault string
}

// MetaConfig selects the metadata backend.
type MetaConfig struct {
	Backend       string
	SeedFile      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
	Collection   string
}

// ExtensionConfig lists markers the host declares for SEO extension detection.
type ExtensionConfig struct {
	Markers       []string
	SniffDocument bool
}

// RewriteConfig controls the output rewrite safety net.
type RewriteConfig struct {
	Enabled         bool
	MaxCaptureBytes int
	AdminPrefixes   []string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Field string
	Ref   string
	Err   error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for %s (ref %q): %v", e.Field, e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// EnvironmentValues returns the merged .env and system environment so
// bootstrap components can read the same inputs Load does.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(dotEnvValues))
	for key, value := range dotEnvValues {
		values[key] = value
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[key] = value
		}
	}
	for key, value := range options.envMap {
		values[key] = value
	}
	return values, nil
}

// Load assembles the service configuration by combining defaults, .env overrides
// and environment variables.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	port := stringWithDefault(lookup, "SEO_SERVER_PORT", "")
	if port == "" {
		// Cloud Run style PORT
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(lookup, "SEO_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SEO_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SEO_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Upstream: UpstreamConfig{
			URL:        stringWithDefault(lookup, "SEO_UPSTREAM_URL", ""),
			Timeout:    durationWithDefault(lookup, "SEO_UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
			ItemHeader: stringWithDefault(lookup, "SEO_UPSTREAM_ITEM_HEADER", defaultItemHeader),
		},
		Admin: AdminConfig{
			Token: strings.TrimSpace(stringWithDefault(lookup, "SEO_ADMIN_TOKEN", "")),
		},
		Locale: LocaleConfig{
			Default:       stringWithDefault(lookup, "SEO_LOCALE_DEFAULT", defaultLocale),
			SettingsFile:  stringWithDefault(lookup, "SEO_LOCALE_SETTINGS_FILE", defaultLocalesFile),
			VarName:       stringWithDefault(lookup, "SEO_LOCALE_VAR", defaultVarName),
			PathSlugs:     mapWithDefault(lookup, "SEO_LOCALE_PATH_SLUGS"),
			PathDefault:   stringWithDefault(lookup, "SEO_LOCALE_PATH_DEFAULT", ""),
			AcceptLocales: csvWithDefault(lookup, "SEO_LOCALE_ACCEPT"),
			CodeHeader:    stringWithDefault(lookup, "SEO_LOCALE_CODE_HEADER", defaultCodeHeader),
			CodeMap:       mapWithDefault(lookup, "SEO_LOCALE_CODE_MAP"),
			CodeDefault:   stringWithDefault(lookup, "SEO_LOCALE_CODE_DEFAULT", ""),
		},
		Meta: MetaConfig{
			Backend:       strings.ToLower(stringWithDefault(lookup, "SEO_META_BACKEND", defaultMetaBackend)),
			SeedFile:      stringWithDefault(lookup, "SEO_META_SEED_FILE", ""),
			RedisAddr:     stringWithDefault(lookup, "SEO_META_REDIS_ADDR", ""),
			RedisPassword: stringWithDefault(lookup, "SEO_META_REDIS_PASSWORD", ""),
			RedisDB:       intWithDefault(lookup, "SEO_META_REDIS_DB", 0),
			RedisPrefix:   stringWithDefault(lookup, "SEO_META_REDIS_PREFIX", defaultRedisPrefix),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "SEO_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "SEO_FIRESTORE_EMULATOR_HOST", ""),
			Collection:   stringWithDefault(lookup, "SEO_FIRESTORE_COLLECTION", defaultCollection),
		},
		Extension: ExtensionConfig{
			Markers:       csvWithDefault(lookup, "SEO_EXTENSION_MARKERS"),
			SniffDocument: boolWithDefault(lookup, "SEO_EXTENSION_SNIFF", true),
		},
		Rewrite: RewriteConfig{
			Enabled:         boolWithDefault(lookup, "SEO_REWRITE_ENABLED", true),
			MaxCaptureBytes: intWithDefault(lookup, "SEO_REWRITE_MAX_CAPTURE_BYTES", defaultMaxCapture),
			AdminPrefixes:   csvWithDefault(lookup, "SEO_REWRITE_ADMIN_PREFIXES"),
		},
	}

	secretFields := []struct {
		name  string
		field *string
	}{
		{"Admin.Token", &cfg.Admin.Token},
		{"Meta.RedisPassword", &cfg.Meta.RedisPassword},
	}
	for _, target := range secretFields {
		resolved, err := resolveSecret(ctx, *target.field, options.secret)
		if err != nil {
			var sErr *SecretError
			if errors.As(err, &sErr) {
				sErr.Field = target.name
			}
			return Config{}, err
		}
		*target.field = resolved
	}

	if len(cfg.Rewrite.AdminPrefixes) == 0 {
		cfg.Rewrite.AdminPrefixes = []string{"/wp-admin", "/wp-login.php"}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return secret, nil
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Upstream.URL == "" {
		missing = append(missing, "Upstream.URL")
	} else if u, err := url.Parse(cfg.Upstream.URL); err != nil || u.Scheme == "" || u.Host == "" {
		missing = append(missing, "Upstream.URL")
	}
	if strings.TrimSpace(cfg.Locale.Default) == "" {
		missing = append(missing, "Locale.Default")
	}
	switch cfg.Meta.Backend {
	case MetaBackendMemory:
	case MetaBackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	case MetaBackendRedis:
		if cfg.Meta.RedisAddr == "" {
			missing = append(missing, "Meta.RedisAddr")
		}
	default:
		missing = append(missing, "Meta.Backend")
	}
	if cfg.Rewrite.MaxCaptureBytes <= 0 {
		missing = append(missing, "Rewrite.MaxCaptureBytes")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// mapWithDefault parses "key=value" pairs separated by commas. Keys are lower-cased, values kept verbatim.
func mapWithDefault(lookup func(string) (string, bool), key string) map[string]string {
	values := make(map[string]string)
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return values
	}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		values[name] = value
	}
	return values
}
