package nominatim

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
)

// API Docs: https://nominatim.org/release-docs/develop/api/Reverse/
// Sample request: https://nominatim.openstreetmap.org/reverse?lat=51.05&lon=13.74&format=json

const label = "nominatim"

// Fetcher decodes a JSON GET response.
type Fetcher interface {
	FetchJSON(ctx context.Context, rawURL, label string, out any) error
}

// Client implements domain.ReverseGeocoder with the Nominatim reverse endpoint.
type Client struct {
	fetcher Fetcher
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a reverse geocoding client. Nominatim's usage policy
// requires an identifying User-Agent, which the Fetcher must send.
func NewClient(fetcher Fetcher, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		baseURL: baseURL,
		logger:  logger.With("component", "nominatim-client"),
	}
}

// ReverseState returns the German federal state at a coordinate. Nominatim
// answers 200 with an "error" field for points it cannot place; that is
// reported as an empty state, not an error.
func (c *Client) ReverseState(ctx context.Context, lat, lng float64) (string, error) {
	u, err := url.Parse(c.baseURL + "/reverse")
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("format", "json")
	q.Set("accept-language", "de")
	u.RawQuery = q.Encode()

	c.logger.Debug("reverse geocoding", "lat", lat, "lng", lng)

	var resp reverseResponse
	if err := c.fetcher.FetchJSON(ctx, u.String(), label, &resp); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if resp.Error != "" {
		c.logger.Debug("reverse geocoding found no place", "lat", lat, "lng", lng, "reason", resp.Error)
		return "", nil
	}
	return resp.Address.State, nil
}

// Nominatim API response types.

type reverseResponse struct {
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
	Error       string  `json:"error"`
}

type address struct {
	City        string `json:"city"`
	County      string `json:"county"`
	State       string `json:"state"`
	ISO31662Lvl string `json:"ISO3166-2-lvl4"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}
