// Command snapshot loads the board once and writes the rendered pages as JSON.
// It uses the same adapters and configuration as the service, so the output
// matches what the API would return at that moment.
//
// Usage:
//
//	TICKETMASTER_API_KEY=... go run ./cmd/snapshot \
//	  -city Dresden -size 6 \
//	  -event G5diZ9fKQWqTf -position 1 \
//	  -now 2025-03-02T10:00:00Z \
//	  -out board.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/event-weather-board/internal/adapter/fetch"
	"github.com/couchcryptid/event-weather-board/internal/adapter/nominatim"
	"github.com/couchcryptid/event-weather-board/internal/adapter/openmeteo"
	"github.com/couchcryptid/event-weather-board/internal/adapter/pegelonline"
	"github.com/couchcryptid/event-weather-board/internal/adapter/ticketmaster"
	"github.com/couchcryptid/event-weather-board/internal/board"
	"github.com/couchcryptid/event-weather-board/internal/config"
	"github.com/couchcryptid/event-weather-board/internal/domain"
	"github.com/couchcryptid/event-weather-board/internal/observability"
	"github.com/jonboulle/clockwork"
)

type snapshot struct {
	Events     board.EventsPage       `json:"events"`
	Conditions board.ConditionsPanel  `json:"conditions"`
	Detail     *board.EventDetailPage `json:"detail,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	city := flag.String("city", "", "events city filter (default EVENTS_CITY)")
	size := flag.Int("size", 0, "events page size (default EVENTS_PAGE_SIZE)")
	eventID := flag.String("event", "", "also render the detail page of this event ID")
	position := flag.Int("position", 0, "1-based list position of -event")
	now := flag.String("now", "", "freeze the clock at this RFC 3339 instant for reproducible output")
	out := flag.String("out", "", "output path (default stdout)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall load timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireTicketmaster(); err != nil {
		return err
	}

	if *now != "" {
		t, err := time.Parse(time.RFC3339, *now)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(t))
		defer domain.SetClock(nil)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()
	fetcher := fetch.NewClient(cfg.UpstreamTimeout, cfg.NominatimUserAgent, metrics)

	table := domain.DefaultRegionTable()
	if cfg.RegionsFile != "" {
		if table, err = domain.LoadRegionTable(cfg.RegionsFile); err != nil {
			return fmt.Errorf("load region table: %w", err)
		}
	}
	var geocoder domain.ReverseGeocoder
	if cfg.GeocodingEnabled {
		geocoder = nominatim.NewClient(fetcher, cfg.NominatimBaseURL, logger)
	}
	resolver := domain.NewRegionResolver(table, nil, geocoder, logger)

	b := board.New(
		ticketmaster.NewClient(fetcher, cfg.TicketmasterBaseURL, cfg.TicketmasterAPIKey),
		openmeteo.NewClient(fetcher, cfg.OpenMeteoBaseURL),
		pegelonline.NewClient(fetcher, cfg.PegelOnlineBaseURL),
		domain.NewNormalizer(resolver, cfg.DisplayTimezone),
		logger,
		metrics,
		board.Options{
			PageSize:        cfg.EventsPageSize,
			City:            cfg.EventsCity,
			WaterStation:    cfg.WaterStation,
			DefaultLocation: board.Location{City: cfg.DefaultCity, Lat: cfg.DefaultLat, Lng: cfg.DefaultLng},
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snap := snapshot{
		Events:     b.Events(ctx, *city, *size),
		Conditions: b.Conditions(ctx, nil),
	}
	if *eventID != "" {
		detail := b.EventDetail(ctx, *eventID, *position)
		snap.Detail = &detail
	}
	log.Printf("events: %d, forecast days: %d", len(snap.Events.Events), len(snap.Conditions.Days))

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}
	return writeJSON(w, snap)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
