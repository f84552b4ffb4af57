package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Macora01/pdftoexcl/internal/artifacts"
	"github.com/Macora01/pdftoexcl/internal/config"
	"github.com/Macora01/pdftoexcl/internal/core"
	"github.com/Macora01/pdftoexcl/internal/extract"
	"github.com/Macora01/pdftoexcl/internal/logging"
	"github.com/Macora01/pdftoexcl/internal/store"
	"github.com/Macora01/pdftoexcl/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := records.Close(); err != nil {
			slog.Error("close record store", "error", err)
		}
	}()
	slog.Info("record store ready", "backend", cfg.Storage.Backend)

	files, err := artifacts.Open(cfg.Storage.DataDir)
	if err != nil {
		return err
	}

	strategy, err := extract.ParseStrategy(cfg.Extract.Strategy)
	if err != nil {
		return err
	}
	extractor := extract.New(extract.Options{
		Strategy:      strategy,
		SnapTolerance: cfg.Extract.SnapTolerance,
		MinConfidence: cfg.Extract.MinConfidence,
	})

	service := core.NewService(records, files, extractor, cfg.Upload)
	server := web.NewServer(service, cfg)
	janitor := service.Janitor(cfg.Retention)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return janitor.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("shutdown complete")
	return nil
}
