package pegelonline

import (
	"context"
	"fmt"
	"net/url"

	"github.com/couchcryptid/event-weather-board/internal/domain"
)

// API Docs: https://pegelonline.wsv.de/webservice/dokuRestapi
// Sample request: https://pegelonline.wsv.de/webservices/rest-api/v2/stations/70272185-xxxx/W/measurements.json?start=P7D

const (
	label = "pegelonline"
	// measurementWindow is an ISO-8601 duration relative to now.
	measurementWindow = "P7D"
)

// Fetcher decodes a JSON GET response.
type Fetcher interface {
	FetchJSON(ctx context.Context, rawURL, label string, out any) error
}

// Client reads gauge stations and water level measurements.
type Client struct {
	fetcher Fetcher
	baseURL string
}

// NewClient creates a PEGELONLINE client. baseURL is e.g.
// "https://pegelonline.wsv.de/webservices/rest-api/v2".
func NewClient(fetcher Fetcher, baseURL string) *Client {
	return &Client{fetcher: fetcher, baseURL: baseURL}
}

// Stations lists all gauge stations.
func (c *Client) Stations(ctx context.Context) ([]domain.Station, error) {
	var stations []domain.Station
	if err := c.fetcher.FetchJSON(ctx, c.baseURL+"/stations.json", label, &stations); err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	return stations, nil
}

// Measurements returns the last seven days of water level ("W") readings
// for a station, oldest first.
func (c *Client) Measurements(ctx context.Context, stationUUID string) ([]domain.Measurement, error) {
	q := url.Values{"start": {measurementWindow}}
	u := fmt.Sprintf("%s/stations/%s/W/measurements.json?%s", c.baseURL, url.PathEscape(stationUUID), q.Encode())

	var ms []domain.Measurement
	if err := c.fetcher.FetchJSON(ctx, u, label, &ms); err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	return ms, nil
}
