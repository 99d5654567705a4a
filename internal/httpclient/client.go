// Package httpclient provides the bounded-time, retrying GET-JSON client
// shared by every provider adapter.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/city-spending-enricher/internal/observability"
)

const (
	// DefaultTimeout bounds each individual request attempt.
	DefaultTimeout = 10 * time.Second

	// UserAgent identifies this tool to the providers.
	UserAgent = "city-spending-enricher/1.2"

	// initialBackoff is the delay before the first retry; it doubles on
	// each subsequent retry (0.75s, 1.5s, 3s, ...).
	initialBackoff = 750 * time.Millisecond
)

// FetchError is the typed failure surfaced after all attempts are exhausted:
// a transport error, a non-2xx status, or a malformed body. StatusCode is
// zero when the failure happened below the HTTP layer.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client performs GET requests that decode JSON responses, with a fixed
// per-attempt timeout and a small caller-chosen retry budget.
type Client struct {
	httpClient *http.Client
	clock      clockwork.Clock
	backoff    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a fetch client. A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		clock:      clockwork.NewRealClock(),
		backoff:    initialBackoff,
		logger:     logger,
		metrics:    metrics,
	}
}

// GetJSON fetches rawURL with the given query parameters and extra headers
// and decodes the response body into out. On failure it retries up to
// retries additional times with exponential backoff, then returns the last
// failure as a *FetchError. It never leaves partial data in out on error:
// decoding happens against the full body of a 2xx response.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, retries int, out any) error {
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			c.metrics.FetchRetries.Inc()
			if err := c.sleep(ctx, backoff); err != nil {
				return &FetchError{URL: rawURL, Err: err}
			}
			backoff *= 2
		}

		err := c.doRequest(ctx, rawURL, params, headers, out)
		if err == nil {
			c.metrics.FetchRequests.WithLabelValues("success").Inc()
			return nil
		}

		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		c.logger.Debug("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt+1,
			"max_attempts", retries+1,
			"error", err,
		)
		lastErr = err
	}

	return lastErr
}

func (c *Client) doRequest(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	fullURL := rawURL
	if len(params) > 0 {
		fullURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.FetchDuration.Observe(c.clock.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

// sleep blocks for d using the injected clock, waking early if ctx ends.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}
