package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/couchcryptid/event-weather-board/internal/adapter/fetch"
	"github.com/couchcryptid/event-weather-board/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "51.05", q.Get("latitude"))
		assert.Equal(t, "13.74", q.Get("longitude"))
		assert.Equal(t, "temperature_2m_max,temperature_2m_min,weathercode", q.Get("daily"))
		assert.Equal(t, "Europe/Berlin", q.Get("timezone"))
		assert.Equal(t, "7", q.Get("forecast_days"))

		w.Write([]byte(`{
			"latitude": 51.06, "longitude": 13.74, "timezone": "Europe/Berlin",
			"daily_units": {"temperature_2m_max": "°C"},
			"daily": {
				"time": ["2025-03-02", "2025-03-03"],
				"weathercode": [3, 61],
				"temperature_2m_max": [7.4, 9.5],
				"temperature_2m_min": [-0.5, 2.3]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(fetch.NewClient(0, "", nil), srv.URL)
	f, err := c.Forecast(context.Background(), 51.05, 13.74)
	require.NoError(t, err)

	days := domain.WeatherDaysFromForecast(f)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-03", days[1].Date)
	assert.Equal(t, 61, *days[1].WeatherCode)
	assert.Equal(t, 10, *days[1].MaxTemp)
	assert.Equal(t, 0, *days[0].MinTemp)
}

func TestForecast_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	c := NewClient(fetch.NewClient(0, "", nil), srv.URL)
	_, err := c.Forecast(context.Background(), 100, 0)

	var apiErr *fetch.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "openmeteo", apiErr.Label)
}
