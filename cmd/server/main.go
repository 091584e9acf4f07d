package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/road-closures-service/internal/adapter/highways"
	httpadapter "github.com/couchcryptid/road-closures-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/road-closures-service/internal/adapter/kafka"
	"github.com/couchcryptid/road-closures-service/internal/cache"
	"github.com/couchcryptid/road-closures-service/internal/config"
	"github.com/couchcryptid/road-closures-service/internal/observability"
	"github.com/couchcryptid/road-closures-service/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fetcher := highways.NewClient(cfg.SubscriptionKey, cfg.APIURL, cfg.FetchTimeout, metrics, logger)
	payloads := cache.NewPayloadStore(cfg.PayloadPath(), cfg.MaxPayloadAge, logger)
	records := cache.NewRecordStore(cfg.RecordsPath())

	// Publishing is feature-flagged via KAFKA_BROKERS.
	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = kafkaPublisher
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	svc := pipeline.New(fetcher, payloads, records, publisher,
		clockwork.NewRealClock(), cfg.Timezone, cfg.SkipFilteredRecords,
		logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the caches so the first page load doesn't pay for the fetch.
	go func() {
		if _, _, err := svc.GetClosures(ctx); err != nil {
			logger.Warn("initial closures run failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
