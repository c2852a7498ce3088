package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moneysaver/internal/amqp"
	"moneysaver/internal/archive"
	"moneysaver/internal/config"
	"moneysaver/internal/ledger"
	"moneysaver/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting moneysaver-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := ledger.NewStore(cfg.LedgerDir)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "dir", cfg.LedgerDir)
		os.Exit(1)
	}

	arch, err := archive.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open reporting archive", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer arch.Close()

	syncWorker := worker.NewSyncWorker(store, arch)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bring the archive up to date before consuming anything.
	if err := syncWorker.ResyncAll(ctx); err != nil {
		logger.Error("Startup resync failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		g.Go(func() error {
			return amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
				func(msg *amqp.LedgerSavedMessage) error {
					return syncWorker.HandleLedgerSaved(ctx, msg)
				})
		})
	} else {
		logger.Info("AMQP disabled - relying on periodic resync only")
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := syncWorker.ResyncAll(ctx); err != nil {
					logger.Error("Periodic resync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
