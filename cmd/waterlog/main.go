package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/floodline/waterlog-monitor/internal/adapter/http"
	kafkaadapter "github.com/floodline/waterlog-monitor/internal/adapter/kafka"
	"github.com/floodline/waterlog-monitor/internal/adapter/nominatim"
	"github.com/floodline/waterlog-monitor/internal/adapter/openweather"
	"github.com/floodline/waterlog-monitor/internal/aggregate"
	"github.com/floodline/waterlog-monitor/internal/config"
	"github.com/floodline/waterlog-monitor/internal/domain"
	"github.com/floodline/waterlog-monitor/internal/observability"
	"github.com/floodline/waterlog-monitor/internal/rainfall"
	"github.com/floodline/waterlog-monitor/internal/report"
	"github.com/floodline/waterlog-monitor/internal/scheduler"
	"github.com/floodline/waterlog-monitor/internal/storage"
)

func main() {
	// Local development convenience; deployments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("WATERLOG_CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	seed := time.Now().UnixNano()

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Error("failed to open storage", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Geocoding is feature-flagged; reports fall back to city-centre
	// coordinates when disabled.
	var geocoder domain.Geocoder
	if cfg.Geocode.Enabled {
		client := nominatim.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent,
			cfg.Geocode.QuerySuffix, cfg.Geocode.Timeout, logger)
		geocoder = nominatim.NewCachedGeocoder(client, cfg.Geocode.CacheSize, metrics)
		logger.Info("geocoding enabled", "cache_size", cfg.Geocode.CacheSize, "timeout", cfg.Geocode.Timeout)
	} else {
		logger.Info("geocoding disabled")
	}

	var provider rainfall.Provider
	if cfg.Weather.Enabled() {
		provider = openweather.NewClient(cfg.Weather.APIKey, cfg.Weather.City,
			cfg.Weather.BaseURL, cfg.Weather.Timeout, logger)
		logger.Info("weather provider enabled", "city", cfg.Weather.City)
	} else {
		logger.Info("weather provider disabled, simulating rainfall")
	}

	source := rainfall.NewSource(provider, clock, seed, logger, metrics)
	model := domain.NewModel(domain.DefaultCatalog(), seed)

	reports := report.NewStore(geocoder, store, cfg.Geocode.Timeout, clock, seed, logger, metrics)
	if err := reports.Seed(ctx); err != nil {
		logger.Error("failed to seed report log", "error", err)
		os.Exit(1)
	}

	if frag, err := store.LastSnapshot(ctx); err != nil {
		logger.Warn("could not read last snapshot", "error", err)
	} else if frag != nil {
		logger.Info("resuming after last persisted snapshot",
			"generation", frag.GenerationID, "generated_at", frag.GeneratedAt)
	}

	var publisher aggregate.AlertPublisher
	var alertWriter *kafkaadapter.Writer
	if cfg.Kafka.Enabled {
		alertWriter = kafkaadapter.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		publisher = alertWriter
		logger.Info("kafka alerts enabled", "topic", cfg.Kafka.Topic)
	}

	agg := aggregate.New(source, model, reports, store, publisher, clock, logger, metrics)
	sched := scheduler.New(agg, clock, logger, cfg.Scheduler.PeakWait, cfg.Scheduler.OffPeakWait)

	srv := httpadapter.NewServer(cfg.HTTPAddr, agg, reports, model, clock, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go sched.Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alertWriter != nil {
		if err := alertWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("storage close error", "error", err)
	}

	logger.Info("shutdown complete")
}
