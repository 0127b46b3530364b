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

	"github.com/couchcryptid/event-weather-board/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/event-weather-board/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/event-weather-board/internal/adapter/kafka"
	"github.com/couchcryptid/event-weather-board/internal/adapter/nominatim"
	"github.com/couchcryptid/event-weather-board/internal/adapter/openmeteo"
	"github.com/couchcryptid/event-weather-board/internal/adapter/pegelonline"
	"github.com/couchcryptid/event-weather-board/internal/adapter/ticketmaster"
	"github.com/couchcryptid/event-weather-board/internal/board"
	"github.com/couchcryptid/event-weather-board/internal/config"
	"github.com/couchcryptid/event-weather-board/internal/domain"
	"github.com/couchcryptid/event-weather-board/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireTicketmaster(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	table := domain.DefaultRegionTable()
	if cfg.RegionsFile != "" {
		table, err = domain.LoadRegionTable(cfg.RegionsFile)
		if err != nil {
			logger.Error("failed to load region table", "path", cfg.RegionsFile, "error", err)
			os.Exit(1)
		}
	}

	fetcher := fetch.NewClient(cfg.UpstreamTimeout, cfg.NominatimUserAgent, metrics)

	// Reverse geocoding is feature-flagged via GEOCODING_ENABLED.
	var geocoder domain.ReverseGeocoder
	if cfg.GeocodingEnabled {
		geocoder = nominatim.NewClient(fetcher, cfg.NominatimBaseURL, logger)
		metrics.GeocodingEnabled.Set(1)
		logger.Info("reverse geocoding enabled", "base_url", cfg.NominatimBaseURL)
	} else {
		logger.Info("reverse geocoding disabled")
	}

	resolver := domain.NewRegionResolver(table, nil, geocoder, logger).
		WithObserver(func(source string) { metrics.RegionLookups.WithLabelValues(source).Inc() })
	normalizer := domain.NewNormalizer(resolver, cfg.DisplayTimezone)

	b := board.New(
		ticketmaster.NewClient(fetcher, cfg.TicketmasterBaseURL, cfg.TicketmasterAPIKey),
		openmeteo.NewClient(fetcher, cfg.OpenMeteoBaseURL),
		pegelonline.NewClient(fetcher, cfg.PegelOnlineBaseURL),
		normalizer,
		logger,
		metrics,
		board.Options{
			PageSize:        cfg.EventsPageSize,
			City:            cfg.EventsCity,
			WaterStation:    cfg.WaterStation,
			DefaultLocation: board.Location{City: cfg.DefaultCity, Lat: cfg.DefaultLat, Lng: cfg.DefaultLng},
		},
	)

	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		b.WithPublisher(publisher)
		logger.Info("event publishing enabled", "topic", cfg.KafkaEventsTopic, "brokers", cfg.KafkaBrokers)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, b, b, logger, httpadapter.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AccessLog:          os.Stdout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm up: the first successful events load flips readiness.
	warmDone := make(chan struct{})
	go func() {
		defer close(warmDone)
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		page := b.Events(warmCtx, "", 0)
		logger.Info("warm-up events load", "events", len(page.Events), "message", page.Message)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	<-warmDone
	b.Shutdown()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
