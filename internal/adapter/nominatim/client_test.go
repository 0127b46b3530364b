package nominatim

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/event-weather-board/internal/adapter/fetch"
	"github.com/couchcryptid/event-weather-board/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.ReverseGeocoder = (*Client)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(fetch.NewClient(0, "event-weather-board-test", nil), srv.URL, discardLogger())
}

func TestReverseState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "50.978700", q.Get("lat"))
		assert.Equal(t, "11.029900", q.Get("lon"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "de", q.Get("accept-language"))
		assert.Equal(t, "event-weather-board-test", r.Header.Get("User-Agent"))

		w.Write([]byte(`{
			"display_name": "Domplatz, Erfurt, Thüringen, Deutschland",
			"address": {"city": "Erfurt", "state": "Thüringen", "ISO3166-2-lvl4": "DE-TH", "country": "Deutschland", "country_code": "de"}
		}`))
	})

	state, err := c.ReverseState(context.Background(), 50.9787, 11.0299)
	require.NoError(t, err)
	assert.Equal(t, "Thüringen", state)
}

func TestReverseState_UnableToGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error": "Unable to geocode"}`))
	})

	state, err := c.ReverseState(context.Background(), 54.5, 4.1)
	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestReverseState_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.ReverseState(context.Background(), 50.9787, 11.0299)

	var apiErr *fetch.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestReverseState_FeedsResolverCache(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"address": {"state": "Thüringen"}}`))
	})
	cache := domain.NewRegionCache()
	r := domain.NewRegionResolver(domain.DefaultRegionTable(), cache, c, discardLogger())

	assert.Equal(t, "Thüringen", r.Resolve(context.Background(), "Weimar", 50.98, 11.33))
	state, ok := cache.Get("Weimar")
	assert.True(t, ok)
	assert.Equal(t, "Thüringen", state)
}
