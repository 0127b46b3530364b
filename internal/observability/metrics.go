package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the board.
type Metrics struct {
	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: api, outcome={success,api_error,network_error,decode_error}
	UpstreamDuration *prometheus.HistogramVec // labels: api

	// Region resolution metrics.
	RegionLookups    *prometheus.CounterVec // labels: source={static,cache,geocoder,failed}
	GeocodingEnabled prometheus.Gauge

	EventsNormalized prometheus.Counter

	// Event publishing metrics.
	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all board metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_board",
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by api and outcome.",
		}, []string{"api", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "event_board",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"api"}),
		RegionLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_board",
			Name:      "region_lookups_total",
			Help:      "Federal state lookups by resolution source.",
		}, []string{"source"}),
		GeocodingEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "event_board",
			Name:      "geocoding_enabled",
			Help:      "1 when reverse geocoding fallback is enabled, 0 otherwise.",
		}),
		EventsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_board",
			Name:      "events_normalized_total",
			Help:      "Total events converted to the display model.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_board",
			Name:      "events_published_total",
			Help:      "Total normalized events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_board",
			Name:      "publish_errors_total",
			Help:      "Total failed Kafka publish attempts.",
		}),
	}

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.RegionLookups,
		m.GeocodingEnabled,
		m.EventsNormalized,
		m.EventsPublished,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_board", Name: "upstream_requests_total"}, []string{"api", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "event_board", Name: "upstream_request_duration_seconds"}, []string{"api"}),
		RegionLookups:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "event_board", Name: "region_lookups_total"}, []string{"source"}),
		GeocodingEnabled: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "event_board", Name: "geocoding_enabled"}),
		EventsNormalized: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "event_board", Name: "events_normalized_total"}),
		EventsPublished:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "event_board", Name: "events_published_total"}),
		PublishErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "event_board", Name: "publish_errors_total"}),
	}
}
