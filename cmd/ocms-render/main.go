// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command ocms-render serves composed page trees over HTTP and imports site
// fixtures.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/ocms-render/internal/cache"
	"github.com/olegiv/ocms-render/internal/compose"
	"github.com/olegiv/ocms-render/internal/config"
	"github.com/olegiv/ocms-render/internal/handler"
	"github.com/olegiv/ocms-render/internal/hooks"
	"github.com/olegiv/ocms-render/internal/logging"
	"github.com/olegiv/ocms-render/internal/metrics"
	"github.com/olegiv/ocms-render/internal/middleware"
	"github.com/olegiv/ocms-render/internal/redirect"
	"github.com/olegiv/ocms-render/internal/scheduler"
	"github.com/olegiv/ocms-render/internal/service"
	"github.com/olegiv/ocms-render/internal/session"
	"github.com/olegiv/ocms-render/internal/store"
	"github.com/olegiv/ocms-render/internal/transfer"
	"github.com/olegiv/ocms-render/internal/version"
)

// Build information, injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func versionInfo() version.Info {
	return version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ocms-render - page composition service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  %s [options]                     Start the HTTP server\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s import -f site.yaml [-dry-run] Import a site fixture\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH           SQLite database path (default: ./data/ocms-render.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL         Redis URL for the shared page cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ACCESS_CONTROL    Evaluate page access rules (default: true)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_TRUST_PROXY       Trust X-Real-IP/X-Forwarded-For (default: false)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("ocms-render %s\n", versionInfo())
		os.Exit(0)
	}

	var err error
	switch flag.Arg(0) {
	case "":
		err = run()
	case "import":
		err = runImport(flag.Args()[1:])
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration and opens the migrated database. The returned
// logger also writes WARN and above to the event log.
func setup() (*config.Config, *sql.DB, *slog.Logger, error) {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger(os.Stdout, level, nil)
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	logger.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	logger = logging.NewLogger(os.Stdout, level, store.New(db))
	slog.SetDefault(logger)
	logger.Debug("event log integration enabled", "min_level", "warn")

	return cfg, db, logger, nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("f", "", "Site fixture file (YAML)")
	dryRun := fs.Bool("dry-run", false, "Validate and count without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errors.New("import: -f is required")
	}

	_, db, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	result, err := transfer.NewImporter(db, logger).ImportFromFile(context.Background(), *file, transfer.ImportOptions{DryRun: *dryRun})
	if result != nil {
		for _, e := range result.Errors {
			_, _ = fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
	}
	if err != nil {
		return fmt.Errorf("importing %s: %w", *file, err)
	}

	logger.Info("site imported",
		"file", *file,
		"dry_run", result.DryRun,
		"created", result.Created,
		"duration", result.Duration)
	return nil
}

func run() error {
	cfg, db, logger, err := setup()
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", "error", err)
		}
	}(db)

	queries := store.New(db)
	m := metrics.New()

	sessionManager := session.New(db, cfg.IsDevelopment())

	backend, backendName := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.PageCacheTTL(),
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = backend.Close() }()
	pageCache := cache.NewPageCache(backend, cfg.PageCacheTTL(), logger)
	logger.Info("page cache initialized", "backend", backendName, "ttl", cfg.PageCacheTTL())

	redirects := redirect.NewResolver(queries, redirect.DefaultTTL, logger)
	if err := redirects.Load(context.Background()); err != nil {
		logger.Warn("initial redirect load failed", "error", err)
	}
	m.SetRedirectRules(redirects.RuleCount())

	retrievalHooks := hooks.NewRegistry(logger)
	retrievalHooks.Register(hooks.Handler{
		Name: "hide-archived",
		Fn:   hooks.HideArchived,
	})

	builder := compose.NewBuilder(compose.NewProjectionFactory(cfg.SanitizeHTML), compose.BuilderConfig{
		AccessControl: cfg.AccessControl,
		MaxDepth:      cfg.MaxMasterDepth,
	}, logger)
	resolver := service.NewPageResolver(queries, pageCache, cfg.AccessControl, m, logger)
	renderer := service.NewRenderer(resolver, queries, builder, redirects, m, logger)
	events := service.NewEventService(db)

	var cachePinger handler.Pinger
	if p, ok := backend.(handler.Pinger); ok {
		cachePinger = p
	}

	sched := scheduler.New(logger)
	jobs := []struct {
		name, description, schedule string
		timeout                     time.Duration
		run                         scheduler.JobFunc
	}{
		{scheduler.JobRedirectReload, "Reload redirect rules", cfg.RedirectReload, 30 * time.Second,
			scheduler.RedirectReloadJob(redirects, m)},
		{scheduler.JobCacheWarmup, "Warm the page cache with published pages", cfg.CacheWarmup, 5 * time.Minute,
			scheduler.CacheWarmupJob(queries, resolver, cfg.CacheWarmupLimit, logger)},
		{scheduler.JobEventCleanup, "Delete old event log entries", cfg.EventCleanup, time.Minute,
			scheduler.EventCleanupJob(events, cfg.EventRetention(), logger)},
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.description, j.schedule, j.timeout, j.run); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		Render: handler.NewRenderHandler(renderer, retrievalHooks, logger),
		Health: handler.NewHealthHandler(db, cachePinger, versionInfo()),
		Admin: handler.NewAdminHandler(handler.AdminDeps{
			Pages:     pageCache,
			Redirects: redirects,
			Jobs:      sched,
			Audit:     events,
			Events:    queries,
		}, logger),
		Sessions:       sessionManager,
		Metrics:        m,
		PreviewLimiter: middleware.NewPreviewRateLimiter(cfg.PreviewRate, cfg.PreviewBurst, logger),
		IsDevelopment:  cfg.IsDevelopment(),
		TrustProxy:     cfg.TrustProxy,
	})

	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
