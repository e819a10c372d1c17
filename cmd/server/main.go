package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/extra-life-tools/donation-queue/internal/config"
	"github.com/extra-life-tools/donation-queue/internal/core"
	"github.com/extra-life-tools/donation-queue/internal/export"
	"github.com/extra-life-tools/donation-queue/internal/extralife"
	"github.com/extra-life-tools/donation-queue/internal/live"
	"github.com/extra-life-tools/donation-queue/internal/logging"
	"github.com/extra-life-tools/donation-queue/internal/store"
	"github.com/extra-life-tools/donation-queue/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"team_id", cfg.ExtraLife.TeamID,
		"store_path", cfg.Store.Path,
		"poll_enabled", cfg.Poll.Enabled,
	)

	// Open the donation store
	recordStore, err := store.New(cfg.Store.Path)
	if err != nil {
		slog.Error("failed to open donation store", "error", err)
		os.Exit(1)
	}
	defer recordStore.Close()

	// Load persisted export settings, seeding from env defaults on first run
	settings, err := config.OpenSettings(cfg.Export.SettingsPath, core.ExportSettings{
		Dir:      cfg.Export.Dir,
		FileName: cfg.Export.FileName,
		Format:   core.ExportFormat(cfg.Export.Format),
	})
	if err != nil {
		slog.Error("failed to load export settings", "error", err)
		os.Exit(1)
	}
	slog.Info("export settings loaded",
		"path", settings.Get().Dir,
		"file", settings.Get().FileName,
		"format", settings.Get().Format,
	)

	// Wire the pipeline
	client := extralife.New(cfg.ExtraLife.BaseURL, cfg.ExtraLife.FetchTimeout)
	hub := live.NewHub()
	sink := export.NewSink(settings)
	service := core.NewService(recordStore, client, sink, hub, settings, cfg.ExtraLife.TeamID)

	server := web.NewServer(service, hub, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	if cfg.Poll.Enabled {
		go service.StartPollScheduler(jobCtx, cfg.Poll.Interval)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
