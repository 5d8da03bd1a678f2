package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jaymin91-1/MyAsset/internal/amqp"
	"github.com/jaymin91-1/MyAsset/internal/config"
	applog "github.com/jaymin91-1/MyAsset/internal/log"
	gsheet "github.com/jaymin91-1/MyAsset/internal/sheets/google"
	"github.com/jaymin91-1/MyAsset/internal/storage"
	"github.com/jaymin91-1/MyAsset/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting mirror-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	mirror, err := storage.NewMirrorRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite mirror", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer mirror.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(sheetsClient, mirror)

	// Catch up on anything mutated while no worker was running.
	logger.Info("Performing startup sync", "currencies", cfg.Currencies)
	if err := mirrorWorker.SyncAll(ctx, cfg.Currencies); err != nil {
		logger.Error("Startup sync failed", applog.FieldError, err)
		// Keep consuming; the next mutation event repairs the partition.
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	err = amqpClient.ConsumeLedgerMutations(ctx, func(msg *amqp.LedgerMutationMessage) error {
		return mirrorWorker.HandleMutation(ctx, msg)
	})
	if err != nil && err != context.Canceled {
		logger.Error("Consumer stopped with error", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Mirror worker stopped gracefully")
}
