package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/shelter-data-etl-service/internal/adapter/ckan"
	httpadapter "github.com/couchcryptid/shelter-data-etl-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/shelter-data-etl-service/internal/adapter/kafka"
	"github.com/couchcryptid/shelter-data-etl-service/internal/config"
	"github.com/couchcryptid/shelter-data-etl-service/internal/observability"
	"github.com/couchcryptid/shelter-data-etl-service/internal/pipeline"
	"github.com/couchcryptid/shelter-data-etl-service/internal/storage"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := ckan.NewClient(cfg.CatalogURL, cfg.FetchTimeout, cfg.FetchRateLimit, metrics, logger)
	source := ckan.NewCachedSource(client, cfg.DatasetID, cfg.CacheTTL, metrics, logger)

	var loaders []pipeline.SnapshotLoader

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaBatchSize, metrics, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	var (
		store   *storage.Store
		cleaner *storage.RetentionCleaner
	)
	if cfg.StorageEnabled() {
		store, err = storage.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("failed to open snapshot store", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, store)

		cleaner, err = storage.NewRetentionCleaner(store, cfg.RetentionSchedule, cfg.RetentionDays, metrics, logger)
		if err != nil {
			logger.Error("failed to schedule retention", "error", err)
			os.Exit(1)
		}
		cleaner.Start()
	} else {
		logger.Info("snapshot persistence disabled")
	}

	transformer := pipeline.NewTransformer(metrics, logger)
	refresher := pipeline.New(source, transformer, cfg.RefreshInterval, logger, metrics, loaders...)

	// Serve the last stored snapshot until the first fetch completes.
	if store != nil {
		if snap, err := store.Latest(ctx); err == nil {
			refresher.Seed(snap)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, refresher, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if cleaner != nil {
		cleaner.Stop()
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("snapshot store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
