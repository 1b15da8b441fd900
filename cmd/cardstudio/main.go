// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the CardStudio server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cardstudio/internal/ai"
	"cardstudio/internal/cache"
	"cardstudio/internal/config"
	"cardstudio/internal/database"
	"cardstudio/internal/editor"
	"cardstudio/internal/export"
	"cardstudio/internal/handlers"
	"cardstudio/internal/pipeline"
	"cardstudio/internal/proxy"
	"cardstudio/internal/realtime"
	"cardstudio/internal/router"
	"cardstudio/internal/scrape"
	"cardstudio/internal/session"
	"cardstudio/internal/state"
	"cardstudio/internal/storage"
	"cardstudio/internal/store"
	"cardstudio/internal/theme"
	"cardstudio/web"
)

func main() {
	// Structured logger — outputs text for both development and production.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load a local .env when present. Real deployments set the
	// environment directly, so a missing file is not an error.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL. The database backs saved projects and the
	// export audit log; sessions live in Valkey, so the editor itself
	// works without it.
	var (
		projectStore *store.ProjectStore
		exportLog    *store.ExportLogStore
	)
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Warn("database unavailable — saved projects disabled", "error", err)
	} else {
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		projectStore = store.NewProjectStore(db)
		exportLog = store.NewExportLogStore(db)
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	resultCache := cache.NewResultCache(valkeyClient, cache.DefaultResultTTL)
	imageCache := cache.NewImageCache(valkeyClient, cache.DefaultImageTTL)
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Load the embedded visual themes.
	themes, err := theme.LoadEmbedded()
	if err != nil {
		slog.Error("failed to load themes", "error", err)
		os.Exit(1)
	}

	// Initialize the AI provider registry with all configured providers.
	providerConfigs := make(map[string]ai.ProviderConfig, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		providerConfigs[name] = ai.ProviderConfig{
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			BaseURL: pc.BaseURL,
		}
	}
	aiRegistry := ai.NewRegistry(cfg.AIProvider, providerConfigs)

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// Assemble the article pipeline: scraper, stock image search,
	// rewrite provider and the Valkey result cache.
	scraper := scrape.NewScraper(15 * time.Second)
	pexels := scrape.NewPexelsClient(cfg.PexelsAPIKey, "")
	alts := scrape.NewAltSearcher("")
	pipe := pipeline.New(scraper, pexels, aiRegistry, resultCache, alts)

	// Real-time hub pushes pipeline progress to connected browsers.
	hub := realtime.NewHub()

	// Each browser session gets its own editor, wired to the hub so
	// async pipeline results reach the right client.
	manager := session.NewManager(sessionStore, func(sessionID string) *editor.Editor {
		return editor.New(pipe, state.RealClock{}, hub.Notifier(sessionID))
	})
	defer manager.Stop()

	// Connect to S3-compatible object storage (optional — exports still
	// download directly without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", storageClient.Bucket(),
		)
	} else {
		slog.Warn("s3 storage not configured — export uploads disabled")
	}

	// Export pipeline: rasterizer plus optional upload and audit log.
	var recorder export.Recorder
	if exportLog != nil {
		recorder = exportLog
	}
	exporter, err := export.New(storageClient, recorder)
	if err != nil {
		slog.Error("failed to initialize exporter", "error", err)
		os.Exit(1)
	}

	// Image proxy for cross-origin article photos, backed by Valkey.
	imageProxy := proxy.New(imageCache)

	api := handlers.NewAPI(manager, themes, hub, exporter, projectStore, exportLog, imageProxy)

	// Serve the embedded client at the root.
	staticFiles, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to mount static assets", "error", err)
		os.Exit(1)
	}
	static := http.FileServer(http.FS(staticFiles))

	// Set up the Chi router with all middleware and routes.
	r := router.New(manager, api, static, secureCookies)

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must accommodate the scrape/rewrite pipeline and
	// multi-card exports, which can take tens of seconds.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Flush in-memory editor state to Valkey so sessions survive restarts.
	manager.PersistAll(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
