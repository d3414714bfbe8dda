// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command blockcms serves the block-based page editor API and the public site.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/blockcms/internal/config"
	"github.com/olegiv/blockcms/internal/handler"
	"github.com/olegiv/blockcms/internal/logging"
	"github.com/olegiv/blockcms/internal/middleware"
	"github.com/olegiv/blockcms/internal/render"
	"github.com/olegiv/blockcms/internal/service"
	"github.com/olegiv/blockcms/internal/session"
	"github.com/olegiv/blockcms/internal/storage"
	"github.com/olegiv/blockcms/internal/store"
	"github.com/olegiv/blockcms/internal/version"
	"github.com/olegiv/blockcms/web"
)

// Build-time variables injected via ldflags.
var (
	appVersion   = ""
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	envFile := flag.String("env-file", ".env", "Environment file to load if present")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "blockcms - block-based page CMS\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_DB_PATH          SQLite database path (default: ./data/blockcms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_STORAGE          File storage: local|minio (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOCKCMS_ADMIN_USERNAME   Bootstrap admin account (default: admin)\n")
	}

	flag.Parse()

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(*envFile, info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(envFile string, info version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	files, err := newFileStorage(ctx, cfg)
	if err != nil {
		return err
	}

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templates, SiteName: cfg.SiteName})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("loading static assets: %w", err)
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	router := handler.NewRouter(handler.RouterConfig{
		DB:              db,
		SessionManager:  session.New(db, cfg.IsDevelopment()),
		Renderer:        renderer,
		StaticFS:        static,
		LoginProtection: loginProtection,
		Users:           service.NewUserService(db),
		Pages:           service.NewPageService(db),
		Blocks:          service.NewBlockService(db),
		Media:           service.NewMediaService(db, files, cfg.MaxUploadBytes()),
		Events:          service.NewEventService(db),
		SessionSecret:   []byte(cfg.SessionSecret),
		MaxUploadBytes:  cfg.MaxUploadBytes(),
		IsDevelopment:   cfg.IsDevelopment(),
		RequestLogging:  cfg.IsDevelopment(),
		Version:         info.Short(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Short())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newFileStorage selects the upload backend from the configuration.
func newFileStorage(ctx context.Context, cfg *config.Config) (storage.FileStorage, error) {
	switch cfg.Storage {
	case config.StorageMinIO:
		m, err := storage.NewMinIO(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			Region:    cfg.MinIORegion,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing minio storage: %w", err)
		}

		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := m.EnsureBucket(bucketCtx); err != nil {
			return nil, fmt.Errorf("preparing storage bucket: %w", err)
		}
		slog.Info("using minio storage", "endpoint", cfg.MinIOEndpoint, "bucket", cfg.MinIOBucket)
		return m, nil
	default:
		l, err := storage.NewLocal(cfg.UploadsDir)
		if err != nil {
			return nil, fmt.Errorf("initializing local storage: %w", err)
		}
		slog.Info("using local storage", "dir", l.Dir())
		return l, nil
	}
}
