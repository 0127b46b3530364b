package openmeteo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/event-weather-board/internal/domain"
)

// API Docs: https://open-meteo.com/en/docs
// Sample request: https://api.open-meteo.com/v1/forecast?latitude=52.52&longitude=13.405&daily=temperature_2m_max,temperature_2m_min,weathercode&timezone=Europe/Berlin&forecast_days=7

const (
	label        = "openmeteo"
	forecastDays = 7
	timezone     = "Europe/Berlin"
)

// Fetcher decodes a JSON GET response.
type Fetcher interface {
	FetchJSON(ctx context.Context, rawURL, label string, out any) error
}

// Client reads daily forecasts from Open-Meteo.
type Client struct {
	fetcher Fetcher
	baseURL string
}

// NewClient creates a forecast client. baseURL is e.g. "https://api.open-meteo.com/v1".
func NewClient(fetcher Fetcher, baseURL string) *Client {
	return &Client{fetcher: fetcher, baseURL: baseURL}
}

// Forecast returns the 7-day daily forecast for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lng float64) (domain.DailyForecast, error) {
	u, err := url.Parse(c.baseURL + "/forecast")
	if err != nil {
		return domain.DailyForecast{}, fmt.Errorf("parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	q.Set("timezone", timezone)
	q.Set("forecast_days", strconv.Itoa(forecastDays))
	u.RawQuery = q.Encode()

	var resp forecastResponse
	if err := c.fetcher.FetchJSON(ctx, u.String(), label, &resp); err != nil {
		return domain.DailyForecast{}, fmt.Errorf("fetch forecast: %w", err)
	}
	return resp.Daily, nil
}

type forecastResponse struct {
	Latitude  float64              `json:"latitude"`
	Longitude float64              `json:"longitude"`
	Timezone  string               `json:"timezone"`
	Daily     domain.DailyForecast `json:"daily"`
}
