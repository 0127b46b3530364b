package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve in minimal containers.
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Upstream API configuration.
	TicketmasterAPIKey  string
	TicketmasterBaseURL string
	OpenMeteoBaseURL    string
	PegelOnlineBaseURL  string
	UpstreamTimeout     time.Duration

	EventsPageSize int
	EventsCity     string
	WaterStation   string

	// Display defaults.
	DisplayTimezone *time.Location
	DefaultLat      float64
	DefaultLng      float64
	DefaultCity     string

	// Reverse geocoding configuration.
	GeocodingEnabled   bool
	NominatimBaseURL   string
	NominatimUserAgent string
	RegionsFile        string

	// Optional event publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaEventsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	// Zero keeps the transport default (no client-side timeout).
	upstreamTimeout, err := time.ParseDuration(envOrDefault("UPSTREAM_TIMEOUT", "0s"))
	if err != nil || upstreamTimeout < 0 {
		return nil, errors.New("invalid UPSTREAM_TIMEOUT")
	}

	pageSize, err := strconv.Atoi(envOrDefault("EVENTS_PAGE_SIZE", "6"))
	if err != nil || pageSize <= 0 || pageSize > 200 {
		return nil, errors.New("invalid EVENTS_PAGE_SIZE")
	}

	tz, err := time.LoadLocation(envOrDefault("DISPLAY_TIMEZONE", "Europe/Berlin"))
	if err != nil {
		return nil, errors.New("invalid DISPLAY_TIMEZONE")
	}

	defaultLat, err := parseCoordinate("DEFAULT_LAT", "52.52", 90)
	if err != nil {
		return nil, err
	}
	defaultLng, err := parseCoordinate("DEFAULT_LNG", "13.405", 180)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: parseList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		TicketmasterAPIKey:  os.Getenv("TICKETMASTER_API_KEY"),
		TicketmasterBaseURL: envOrDefault("TICKETMASTER_BASE_URL", "https://app.ticketmaster.com/discovery/v2"),
		OpenMeteoBaseURL:    envOrDefault("OPENMETEO_BASE_URL", "https://api.open-meteo.com/v1"),
		PegelOnlineBaseURL:  envOrDefault("PEGELONLINE_BASE_URL", "https://pegelonline.wsv.de/webservices/rest-api/v2"),
		UpstreamTimeout:     upstreamTimeout,

		EventsPageSize: pageSize,
		EventsCity:     os.Getenv("EVENTS_CITY"),
		WaterStation:   envOrDefault("WATER_STATION", "DRESDEN"),

		DisplayTimezone: tz,
		DefaultLat:      defaultLat,
		DefaultLng:      defaultLng,
		DefaultCity:     envOrDefault("DEFAULT_CITY", "Berlin"),

		GeocodingEnabled:   envOrDefault("GEOCODING_ENABLED", "true") == "true",
		NominatimBaseURL:   envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "event-weather-board/1.0"),
		RegionsFile:        os.Getenv("REGIONS_FILE"),

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     parseList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEventsTopic: envOrDefault("KAFKA_EVENTS_TOPIC", "normalized-events"),
	}

	if cfg.GeocodingEnabled && cfg.NominatimUserAgent == "" {
		return nil, errors.New("NOMINATIM_USER_AGENT is required when GEOCODING_ENABLED is true")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaEventsTopic == "" {
		return nil, errors.New("KAFKA_EVENTS_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

// RequireTicketmaster reports an error when the events API key is missing.
// Only entry points that load events call it, so the weather and water
// panels can run without a key.
func (c *Config) RequireTicketmaster() error {
	if c.TicketmasterAPIKey == "" {
		return errors.New("TICKETMASTER_API_KEY is required")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCoordinate(key, fallback string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil || v < -limit || v > limit {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}
