package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/giacomo1215/GGUniversalSEO/internal/handlers"
	"github.com/giacomo1215/GGUniversalSEO/internal/locale"
	"github.com/giacomo1215/GGUniversalSEO/internal/meta"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/config"
	pfirestore "github.com/giacomo1215/GGUniversalSEO/internal/platform/firestore"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/observability"
	"github.com/giacomo1215/GGUniversalSEO/internal/platform/secrets"
	"github.com/giacomo1215/GGUniversalSEO/internal/proxy"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo/extension"
	"github.com/giacomo1215/GGUniversalSEO/internal/seo/rewrite"
)

var version = "dev"

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	envValues, err := config.EnvironmentValues()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment values: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(envValues["LOG_LEVEL"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("seo")
	ctx = observability.WithLogger(ctx, logger)

	fetcher := newSecretFetcher(logger, envValues)
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	settings := locale.NewFileSettings(cfg.Locale.SettingsFile)
	if err := settings.Seed(ctx); err != nil {
		logger.Fatal("failed to seed locale settings", zap.String("path", settings.Path()), zap.Error(err))
	}

	backend, checks, closeBackend, err := newMetaBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise metadata backend", zap.String("backend", cfg.Meta.Backend), zap.Error(err))
	}
	defer closeBackend(logger)

	accessor := meta.NewAccessor(backend, logger.Named("meta"))
	writer := meta.NewWriter(backend)
	detector := locale.NewDetector(cfg.Locale.Default, logger.Named("locale"), localeProviders(cfg.Locale)...)
	resolver := seo.NewResolver(accessor, settings, logger.Named("resolver"))

	registry := observability.NewRegistry()
	classifier := proxy.NewClassifier(cfg.Rewrite.AdminPrefixes)
	items := proxy.NewItemResolver(cfg.Upstream.ItemHeader)

	rewriter := rewrite.NewMiddleware(rewrite.Options{
		Classify:        classifier.Classify,
		Item:            items.Resolve,
		Locale:          func(r *http.Request) string { return seo.RequestLocale(r, detector) },
		Resolver:        resolver,
		MaxCaptureBytes: cfg.Rewrite.MaxCaptureBytes,
		Metrics:         rewrite.NewMetrics(registry),
		Logger:          logger.Named("rewrite"),
	})

	proxyOpts := []proxy.Option{}
	if cfg.Rewrite.Enabled {
		proxyOpts = append(proxyOpts, proxy.WithEligibility(rewriter.Eligible))
	}
	upstream, err := proxy.New(cfg.Upstream, logger.Named("proxy"), proxyOpts...)
	if err != nil {
		logger.Fatal("failed to initialise upstream proxy", zap.Error(err))
	}

	var fallback http.Handler = upstream
	if cfg.Rewrite.Enabled {
		fallback = rewriter.Handler(upstream)
	}

	overrideOpts := []handlers.OverridesOption{
		handlers.WithMarkerProbe(extension.NewMarkers(cfg.Extension.Markers...)),
		handlers.WithLocaleLabels(settings),
	}
	if cfg.Extension.SniffDocument {
		overrideOpts = append(overrideOpts, handlers.WithDocumentSource(upstream))
	}

	healthOpts := []handlers.HealthOption{
		handlers.WithHealthStartedAt(startedAt),
		handlers.WithHealthVersion(version),
	}
	for name, check := range checks {
		healthOpts = append(healthOpts, handlers.WithHealthCheck(name, check))
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.TraceMiddleware(),
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
			seo.StateMiddleware,
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(healthOpts...)),
		handlers.WithMetricsHandler(observability.MetricsHandler(registry)),
		handlers.WithPublicRoutes(handlers.NewOverridesHandlers(detector, resolver, overrideOpts...).Routes),
		handlers.WithAdminMiddlewares(handlers.RequireAdminToken(cfg.Admin.Token)),
		handlers.WithAdminRoutes(
			handlers.NewSettingsHandlers(settings, handlers.WithLocaleCatalog(detector)).Routes,
			handlers.NewMetaHandlers(accessor, writer, settings).Routes,
		),
		handlers.WithFallback(fallback),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("seo edge listening",
			zap.String("addr", srv.Addr),
			zap.String("upstream", cfg.Upstream.URL),
			zap.String("meta_backend", cfg.Meta.Backend),
			zap.Strings("locale_providers", detector.Providers()),
			zap.Bool("rewrite", cfg.Rewrite.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newSecretFetcher(logger *zap.Logger, env map[string]string) *secrets.Fetcher {
	lookup := func(key string) string {
		return strings.TrimSpace(env[key])
	}

	project := lookup("SEO_SECRETS_PROJECT_ID")
	if project == "" {
		project = lookup("SEO_FIRESTORE_PROJECT_ID")
	}
	opts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithDefaultProject(project),
		secrets.WithClientOptions(option.WithUserAgent("gg-universal-seo/" + version)),
	}
	if path := lookup("SEO_SECRETS_FALLBACK_FILE"); path != "" {
		opts = append(opts, secrets.WithFallbackFile(path))
	}
	return secrets.NewFetcher(opts...)
}

// localeProviders builds the detector chain in priority order, skipping
// providers with nothing configured.
func localeProviders(cfg config.LocaleConfig) []locale.Provider {
	var providers []locale.Provider
	if cfg.VarName != "" {
		providers = append(providers, locale.NewVarProvider(cfg.VarName))
	}
	if len(cfg.PathSlugs) > 0 || cfg.PathDefault != "" {
		providers = append(providers, locale.NewPathProvider(cfg.PathSlugs, cfg.PathDefault))
	}
	if len(cfg.AcceptLocales) > 0 {
		providers = append(providers, locale.NewAcceptLanguageProvider(cfg.AcceptLocales))
	}
	if len(cfg.CodeMap) > 0 || cfg.CodeDefault != "" {
		providers = append(providers, locale.NewCodeProvider(cfg.CodeHeader, cfg.CodeMap, cfg.CodeDefault))
	}
	return providers
}

type closeFunc func(*zap.Logger)

func newMetaBackend(ctx context.Context, cfg config.Config) (meta.Backend, map[string]handlers.CheckFunc, closeFunc, error) {
	noop := func(*zap.Logger) {}
	switch cfg.Meta.Backend {
	case config.MetaBackendFirestore:
		provider := pfirestore.NewProvider(cfg.Firestore,
			pfirestore.WithClientOptions(option.WithUserAgent("gg-universal-seo/"+version)),
		)
		if _, err := provider.Client(ctx); err != nil {
			return nil, nil, noop, err
		}
		backend := meta.NewFirestoreBackend(provider, cfg.Firestore.Collection)
		checks := map[string]handlers.CheckFunc{"firestore": backend.Ping}
		closer := func(logger *zap.Logger) {
			if err := provider.Close(); err != nil {
				logger.Warn("firestore close error", zap.Error(err))
			}
		}
		return backend, checks, closer, nil
	case config.MetaBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Meta.RedisAddr,
			Password: cfg.Meta.RedisPassword,
			DB:       cfg.Meta.RedisDB,
		})
		backend := meta.NewRedisBackend(client, cfg.Meta.RedisPrefix)
		if err := backend.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		checks := map[string]handlers.CheckFunc{"redis": backend.Ping}
		closer := func(logger *zap.Logger) {
			if err := client.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}
		return backend, checks, closer, nil
	default:
		if cfg.Meta.SeedFile == "" {
			return meta.NewMemoryBackend(), nil, noop, nil
		}
		backend, err := meta.LoadMemorySeed(cfg.Meta.SeedFile)
		if err != nil {
			return nil, nil, noop, err
		}
		return backend, nil, noop, nil
	}
}
