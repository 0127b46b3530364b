// Package fetch issues GET requests against the public upstream APIs and
// decodes their JSON bodies.
//
// Errors never include the request URL because query strings carry API keys.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/event-weather-board/internal/observability"
)

// APIError reports a response whose status is outside the 2xx range.
type APIError struct {
	Status int
	Label  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: status %d", e.Label, e.Status)
}

// NetworkError reports a transport failure: DNS, connect, TLS, or a
// cancelled context.
type NetworkError struct {
	Label string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Label, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client performs JSON GET requests. It never retries.
type Client struct {
	httpClient *http.Client
	userAgent  string
	metrics    *observability.Metrics
}

// NewClient creates a Client. A zero timeout keeps the transport default.
// metrics may be nil.
func NewClient(timeout time.Duration, userAgent string, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		metrics:    metrics,
	}
}

// FetchJSON GETs rawURL and decodes the body into out. label names the
// upstream in errors and metrics.
func (c *Client) FetchJSON(ctx context.Context, rawURL, label string, out any) error {
	start := time.Now()
	outcome := "success"
	defer func() {
		if c.metrics != nil {
			c.metrics.UpstreamRequests.WithLabelValues(label, outcome).Inc()
			c.metrics.UpstreamDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		outcome = "network_error"
		return &NetworkError{Label: label, Err: errors.New("invalid request URL")}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "network_error"
		return &NetworkError{Label: label, Err: stripURL(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "api_error"
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck // drain for connection reuse
		return &APIError{Status: resp.StatusCode, Label: label}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("decode %s response: %w", label, err)
	}
	return nil
}

// stripURL unwraps *url.Error so the request URL, and any key in its query,
// stays out of the message.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
