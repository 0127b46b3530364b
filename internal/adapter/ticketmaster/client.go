package ticketmaster

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/event-weather-board/internal/domain"
)

// API Docs: https://developer.ticketmaster.com/products-and-docs/apis/discovery-api/v2/
// Sample request: https://app.ticketmaster.com/discovery/v2/events.json?apikey=KEY&countryCode=DE&size=6&sort=date,asc

const label = "ticketmaster"

// Fetcher decodes a JSON GET response.
type Fetcher interface {
	FetchJSON(ctx context.Context, rawURL, label string, out any) error
}

// Client reads events from the Ticketmaster Discovery API.
type Client struct {
	fetcher Fetcher
	baseURL string
	apiKey  string
}

// NewClient creates a Discovery API client. baseURL has no trailing slash,
// e.g. "https://app.ticketmaster.com/discovery/v2".
func NewClient(fetcher Fetcher, baseURL, apiKey string) *Client {
	return &Client{fetcher: fetcher, baseURL: baseURL, apiKey: apiKey}
}

// ListEvents returns up to size upcoming events in Germany, soonest first.
// An empty city searches the whole country.
func (c *Client) ListEvents(ctx context.Context, city string, size int) ([]domain.RawEvent, error) {
	q := url.Values{
		"apikey":      {c.apiKey},
		"countryCode": {"DE"},
		"size":        {strconv.Itoa(size)},
		"sort":        {"date,asc"},
	}
	if city != "" {
		q.Set("city", city)
	}

	var resp listResponse
	if err := c.fetcher.FetchJSON(ctx, c.baseURL+"/events.json?"+q.Encode(), label, &resp); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if resp.Embedded == nil {
		return nil, nil
	}
	return resp.Embedded.Events, nil
}

// GetEvent returns a single event by its Ticketmaster ID.
func (c *Client) GetEvent(ctx context.Context, id string) (domain.RawEvent, error) {
	q := url.Values{"apikey": {c.apiKey}}
	u := fmt.Sprintf("%s/events/%s.json?%s", c.baseURL, url.PathEscape(id), q.Encode())

	var ev domain.RawEvent
	if err := c.fetcher.FetchJSON(ctx, u, label, &ev); err != nil {
		return domain.RawEvent{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// Discovery API response types.

type listResponse struct {
	Embedded *struct {
		Events []domain.RawEvent `json:"events"`
	} `json:"_embedded"`
}
