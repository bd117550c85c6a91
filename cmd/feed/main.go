// Command feed runs the cyclone feed aggregation service: it periodically
// discovers active storms from RAMMB/CIRA, resolves and parses their advisory
// decks, and serves the resulting GeoJSON collection over HTTP, optionally
// publishing each run to a Kafka feed topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cyclone-feed-service/internal/adapter/httpserver"
	kafkaadapter "github.com/couchcryptid/cyclone-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/cyclone-feed-service/internal/adapter/rammb"
	"github.com/couchcryptid/cyclone-feed-service/internal/aggregator"
	"github.com/couchcryptid/cyclone-feed-service/internal/config"
	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/couchcryptid/cyclone-feed-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := rammb.NewClient(cfg.FetchTimeout, logger)
	source, err := rammb.NewSource(cfg.RAMMBBaseURL, client, logger)
	if err != nil {
		logger.Error("failed to create source", "error", err)
		os.Exit(1)
	}
	cached := rammb.NewCachedSource(source, cfg.ResolveCacheSize, metrics)

	policy := domain.SelectLast
	if cfg.SelectPolicy == config.SelectPolicyByTime {
		policy = domain.SelectByTime
	}

	agg := aggregator.New(cached, policy, logger, metrics, cfg.WorkerCount, cfg.TrackHistoryLimit)

	var publisher aggregator.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka feed enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka feed disabled")
	}

	runner := aggregator.NewRunner(agg, publisher, cfg.RefreshInterval, cfg.RunTimeout, logger, metrics)

	srv := httpserver.NewServer(cfg.HTTPAddr, runner, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Error("runner error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
