package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/event-weather-board/internal/board"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// userLocationLabel names coordinates that arrive without a city, as from
// browser geolocation.
const userLocationLabel = "Your Location"

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// BoardService builds the pages served under /api.
type BoardService interface {
	Events(ctx context.Context, city string, size int) board.EventsPage
	EventDetail(ctx context.Context, id string, position int) board.EventDetailPage
	Weather(ctx context.Context, loc *board.Location) board.WeatherPanel
	Water(ctx context.Context) board.WaterPanel
	Conditions(ctx context.Context, loc *board.Location) board.ConditionsPanel
}

// Options configure the HTTP surface.
type Options struct {
	CORSAllowedOrigins []string
	AccessLog          io.Writer // nil disables access logging
}

// Server exposes the board JSON API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	board      BoardService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, svc BoardService, ready ReadinessChecker, logger *slog.Logger, opts Options) *Server {
	r := mux.NewRouter()

	s := &Server{board: svc, logger: logger}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", s.handleEventDetail).Methods(http.MethodGet)
	api.HandleFunc("/weather", s.handleWeather).Methods(http.MethodGet)
	api.HandleFunc("/water", s.handleWater).Methods(http.MethodGet)
	api.HandleFunc("/conditions", s.handleConditions).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", handleReady(ready)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	var h http.Handler = r
	if len(opts.CORSAllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(opts.CORSAllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		)(h)
	}
	if opts.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(opts.AccessLog, h)
	}
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)

	s.handler = h
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the wrapped router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	size, err := optionalPositiveInt(q.Get("size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid size")
		return
	}
	writeJSON(w, http.StatusOK, s.board.Events(r.Context(), strings.TrimSpace(q.Get("city")), size))
}

func (s *Server) handleEventDetail(w http.ResponseWriter, r *http.Request) {
	position, err := optionalPositiveInt(r.URL.Query().Get("position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid position")
		return
	}
	page := s.board.EventDetail(r.Context(), mux.Vars(r)["id"], position)
	status := http.StatusOK
	if page.NotFound {
		status = http.StatusNotFound
	}
	writeJSON(w, status, page)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.board.Weather(r.Context(), loc))
}

func (s *Server) handleWater(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Water(r.Context()))
}

func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	loc, err := parseLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.board.Conditions(r.Context(), loc))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// parseLocation reads lat, lng, and city. With neither coordinate present it
// returns nil so the board uses its default location.
func parseLocation(r *http.Request) (*board.Location, error) {
	q := r.URL.Query()
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	lat, ok := parseCoordinate(latStr, 90)
	if !ok {
		return nil, errors.New("invalid lat")
	}
	lng, ok := parseCoordinate(lngStr, 180)
	if !ok {
		return nil, errors.New("invalid lng")
	}
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		city = userLocationLabel
	}
	return &board.Location{City: city, Lat: lat, Lng: lng}, nil
}

// parseCoordinate accepts finite values within [-limit, limit]. ParseFloat
// also accepts "NaN" and "Inf", which no range check rejects on its own.
func parseCoordinate(s string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

// optionalPositiveInt parses s, treating "" as 0 (unset).
func optionalPositiveInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

// recoveryLogger routes handler panics into the service logger.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("http handler panic", "panic", v)
}
