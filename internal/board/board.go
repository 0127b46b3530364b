// Package board joins the upstream sources into the pages the render layer draws.
package board

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/event-weather-board/internal/adapter/fetch"
	"github.com/couchcryptid/event-weather-board/internal/domain"
	"github.com/couchcryptid/event-weather-board/internal/observability"
	"github.com/google/uuid"
)

// EventSource reads raw events.
type EventSource interface {
	ListEvents(ctx context.Context, city string, size int) ([]domain.RawEvent, error)
	GetEvent(ctx context.Context, id string) (domain.RawEvent, error)
}

// ForecastSource reads daily weather forecasts.
type ForecastSource interface {
	Forecast(ctx context.Context, lat, lng float64) (domain.DailyForecast, error)
}

// GaugeSource reads river gauge stations and their measurements.
type GaugeSource interface {
	Stations(ctx context.Context) ([]domain.Station, error)
	Measurements(ctx context.Context, stationUUID string) ([]domain.Measurement, error)
}

// EventPublisher forwards loaded event pages downstream.
type EventPublisher interface {
	Publish(ctx context.Context, batch domain.EventBatch) error
}

// Options are the defaults applied when a request leaves a value unset.
type Options struct {
	PageSize        int
	City            string
	WaterStation    string
	DefaultLocation Location
	PublishTimeout  time.Duration
}

const (
	chartStep         = 10
	detailForecastLen = 3
)

// Board composes the upstream sources into render-ready pages. Every page
// method joins its concurrent fetches before returning and never fails: a
// source that errors is logged and replaced by a placeholder message.
type Board struct {
	events     EventSource
	forecast   ForecastSource
	gauges     GaugeSource
	normalizer *domain.Normalizer
	publisher  EventPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options

	ready      atomic.Bool
	publishing sync.WaitGroup
	newID      func() string

	mu     sync.Mutex // guards closed and publishing.Add
	closed bool
}

// New creates a Board. The publisher is optional; see WithPublisher.
func New(events EventSource, forecast ForecastSource, gauges GaugeSource, normalizer *domain.Normalizer, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Board {
	if opts.PageSize <= 0 {
		opts.PageSize = 6
	}
	if opts.WaterStation == "" {
		opts.WaterStation = domain.DefaultWaterStation
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 10 * time.Second
	}
	return &Board{
		events:     events,
		forecast:   forecast,
		gauges:     gauges,
		normalizer: normalizer,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
		newID:      func() string { return uuid.NewString() },
	}
}

// WithPublisher enables forwarding of every loaded events page.
func (b *Board) WithPublisher(p EventPublisher) *Board {
	b.publisher = p
	return b
}

// CheckReadiness returns nil once an events page has been loaded from the
// events API, or an error describing why the service is not yet ready.
func (b *Board) CheckReadiness(_ context.Context) error {
	if !b.ready.Load() {
		return errors.New("no events page has been loaded yet")
	}
	return nil
}

// Wait blocks until in-flight publishes finish.
func (b *Board) Wait() {
	b.publishing.Wait()
}

// Shutdown stops forwarding new pages and waits for in-flight publishes.
// Pages are still served afterwards, they are just not published.
func (b *Board) Shutdown() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.publishing.Wait()
}

// Events loads, normalizes, and region-resolves one page of events. An empty
// city or non-positive size falls back to the configured defaults.
func (b *Board) Events(ctx context.Context, city string, size int) EventsPage {
	if city == "" {
		city = b.opts.City
	}
	if size <= 0 {
		size = b.opts.PageSize
	}

	page := EventsPage{
		SnapshotID:  b.newID(),
		GeneratedAt: domain.Now(),
		Events:      []EventCard{},
		Markers:     []MapMarker{},
	}

	raws, err := b.events.ListEvents(ctx, city, size)
	if err != nil {
		b.logger.Warn("events unavailable", "source", "ticketmaster", "city", city, "error", err)
		page.Message = MsgEventsFailed
		return page
	}
	b.ready.Store(true)

	if len(raws) == 0 {
		page.Message = MsgNoEvents
		return page
	}

	events := b.normalizeAll(ctx, raws)
	for _, ev := range events {
		page.Events = append(page.Events, newEventCard(ev))
		page.Markers = append(page.Markers, newMapMarker(ev))
	}

	b.publish(ctx, domain.EventBatch{SnapshotID: page.SnapshotID, PublishedAt: page.GeneratedAt, Events: events})
	return page
}

// normalizeAll normalizes every event concurrently. Each goroutine writes
// only its own slice index.
func (b *Board) normalizeAll(ctx context.Context, raws []domain.RawEvent) []domain.Event {
	events := make([]domain.Event, len(raws))
	var wg sync.WaitGroup
	for i := range raws {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			events[i] = b.normalizer.Normalize(ctx, raws[i], i)
		}(i)
	}
	wg.Wait()

	if b.metrics != nil {
		b.metrics.EventsNormalized.Add(float64(len(events)))
	}
	return events
}

// publish forwards the batch in the background so a slow broker never delays
// the page. The request context's cancellation is deliberately dropped.
func (b *Board) publish(ctx context.Context, batch domain.EventBatch) {
	if b.publisher == nil {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.Debug("publish skipped after shutdown", "snapshot_id", batch.SnapshotID)
		return
	}
	b.publishing.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.publishing.Done()
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.opts.PublishTimeout)
		defer cancel()

		if err := b.publisher.Publish(pubCtx, batch); err != nil {
			b.logger.Warn("publish events failed", "snapshot_id", batch.SnapshotID, "count", len(batch.Events), "error", err)
			if b.metrics != nil {
				b.metrics.PublishErrors.Inc()
			}
			return
		}
		if b.metrics != nil {
			b.metrics.EventsPublished.Add(float64(len(batch.Events)))
		}
	}()
}

// Weather loads the seven-day forecast for loc. A nil loc uses the default location.
func (b *Board) Weather(ctx context.Context, loc *Location) WeatherPanel {
	panel, _ := b.loadWeather(ctx, b.location(loc))
	return panel
}

// Water loads the configured gauge, falling back to the first station.
func (b *Board) Water(ctx context.Context) WaterPanel {
	panel, _ := b.loadWater(ctx, func(stations []domain.Station) (domain.Station, bool) {
		return domain.SelectStationByShortName(stations, b.opts.WaterStation)
	})
	return panel
}

// Conditions loads weather and water concurrently and merges them per day.
// A failing source leaves its own panel with a message; the other stays
// fully populated.
func (b *Board) Conditions(ctx context.Context, loc *Location) ConditionsPanel {
	out := ConditionsPanel{GeneratedAt: domain.Now()}

	var (
		wg           sync.WaitGroup
		days         []domain.WeatherDay
		measurements []domain.Measurement
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Weather, days = b.loadWeather(ctx, b.location(loc))
	}()
	go func() {
		defer wg.Done()
		out.Water, measurements = b.loadWater(ctx, func(stations []domain.Station) (domain.Station, bool) {
			return domain.SelectStationByShortName(stations, b.opts.WaterStation)
		})
	}()
	wg.Wait()

	out.Days = domain.MergeConditions(days, measurements)
	return out
}

// EventDetail loads one event by its external ID together with the weather
// at its venue and the nearest matching gauge. position is the 1-based list
// position the event was shown at, or 0 when unknown.
func (b *Board) EventDetail(ctx context.Context, id string, position int) EventDetailPage {
	page := EventDetailPage{GeneratedAt: domain.Now(), Conditions: []domain.DayConditions{}}
	if id == "" {
		page.NotFound = true
		page.Message = MsgEventNotFound
		return page
	}

	raw, err := b.events.GetEvent(ctx, id)
	if err != nil {
		var apiErr *fetch.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			page.NotFound = true
			page.Message = MsgEventNotFound
			return page
		}
		b.logger.Warn("event unavailable", "source", "ticketmaster", "event_id", id, "error", err)
		page.Message = MsgUnexpectedError
		return page
	}

	index := 0
	if position > 0 {
		index = position - 1
	}
	ev := b.normalizer.Normalize(ctx, raw, index)
	page.Event = &ev

	var (
		wg           sync.WaitGroup
		days         []domain.WeatherDay
		measurements []domain.Measurement
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		page.Weather, days = b.loadWeather(ctx, Location{City: ev.Region, Lat: ev.Lat, Lng: ev.Lng})
	}()
	go func() {
		defer wg.Done()
		page.Water, measurements = b.loadWater(ctx, func(stations []domain.Station) (domain.Station, bool) {
			return domain.SelectStationForRegion(stations, ev.Region)
		})
	}()
	wg.Wait()

	page.EventDay = eventDayWeather(days, ev.LocalDate)
	if len(page.Weather.Days) > detailForecastLen {
		page.Weather.Days = page.Weather.Days[:detailForecastLen]
	}
	if len(days) > detailForecastLen {
		days = days[:detailForecastLen]
	}
	page.Conditions = domain.MergeConditions(days, measurements)
	return page
}

func (b *Board) location(loc *Location) Location {
	if loc == nil {
		return b.opts.DefaultLocation
	}
	return *loc
}

func (b *Board) loadWeather(ctx context.Context, loc Location) (WeatherPanel, []domain.WeatherDay) {
	panel := WeatherPanel{
		Location:    loc,
		Label:       loc.City + ", Germany",
		GeneratedAt: domain.Now(),
		Days:        []WeatherCard{},
	}

	forecast, err := b.forecast.Forecast(ctx, loc.Lat, loc.Lng)
	if err != nil {
		b.logger.Warn("weather unavailable", "source", "openmeteo", "lat", loc.Lat, "lng", loc.Lng, "error", err)
		panel.Message = MsgWeatherUnavailable
		return panel, nil
	}

	days := domain.WeatherDaysFromForecast(forecast)
	if len(days) == 0 {
		panel.Message = MsgWeatherUnavailable
		return panel, nil
	}
	for i, d := range days {
		panel.Days = append(panel.Days, newWeatherCard(d, i))
	}
	today := panel.Days[0]
	panel.Today = &today
	return panel, days
}

func (b *Board) loadWater(ctx context.Context, pick func([]domain.Station) (domain.Station, bool)) (WaterPanel, []domain.Measurement) {
	panel := WaterPanel{
		GeneratedAt:  domain.Now(),
		Chart:        []domain.ChartPoint{},
		Measurements: []domain.Measurement{},
	}

	stations, err := b.gauges.Stations(ctx)
	if err != nil {
		b.logger.Warn("gauge stations unavailable", "source", "pegelonline", "error", err)
		panel.Message = MsgWaterUnavailable
		return panel, nil
	}
	station, ok := pick(stations)
	if !ok {
		panel.Message = MsgWaterUnavailable
		return panel, nil
	}
	panel.Station = &station

	measurements, err := b.gauges.Measurements(ctx, station.UUID)
	if err != nil {
		b.logger.Warn("gauge measurements unavailable", "source", "pegelonline", "station", station.ShortName, "error", err)
		panel.Message = MsgWaterUnavailable
		return panel, nil
	}
	level, ok := domain.LatestLevel(measurements)
	if !ok {
		panel.Message = MsgWaterUnavailable
		return panel, nil
	}

	status := domain.ClassifyWater(level)
	panel.Level = &level
	panel.Status = &status
	panel.Chart = domain.ChartSeries(measurements, chartStep)
	panel.Measurements = measurements
	return panel, measurements
}

func eventDayWeather(days []domain.WeatherDay, localDate string) EventDayWeather {
	for i, d := range days {
		if localDate != "" && d.Date == localDate {
			card := newWeatherCard(d, i)
			return EventDayWeather{Available: true, Card: &card}
		}
	}
	return EventDayWeather{Message: MsgEventDayNoForecast}
}
