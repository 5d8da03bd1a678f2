package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jaymin91-1/MyAsset/internal/amqp"
	"github.com/jaymin91-1/MyAsset/internal/backend"
	"github.com/jaymin91-1/MyAsset/internal/categories"
	"github.com/jaymin91-1/MyAsset/internal/config"
	apphttp "github.com/jaymin91-1/MyAsset/internal/http"
	applog "github.com/jaymin91-1/MyAsset/internal/log"
	"github.com/jaymin91-1/MyAsset/internal/rates"
	"github.com/jaymin91-1/MyAsset/internal/services"
	"github.com/jaymin91-1/MyAsset/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:                backend.BackendType(cfg.DataBackend),
		GoogleSpreadsheetID: cfg.GoogleSpreadsheetID,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger backend",
			applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// Mutation events are optional; without a broker the mirror simply
	// stays stale.
	var events services.MutationPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP broker", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("Connected to AMQP broker", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	resolver := categories.NewResolver(cfg.DefaultCategories, cfg.FallbackCategory)
	svc := services.NewLedgerService(result.Backend, resolver, events, cfg.Currencies)

	ratesClient := rates.New(cfg.RateAPIURL, cfg.ReferenceCurrency, cfg.BaseCurrency,
		cfg.Currencies, cfg.FallbackRates)

	sessions := session.NewManager(cfg.DefaultCurrency, ratesClient.Fallback(), cfg.SessionTTL)
	defer sessions.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		CacheTTL:     cfg.CacheTTL,
		CacheMaxSize: cfg.CacheMaxSize,
	}, svc, sessions, ratesClient, logger.WithComponent(applog.ComponentHTTP))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting myasset server",
		"port", cfg.Port, "backend", cfg.DataBackend, "currencies", cfg.Currencies)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
