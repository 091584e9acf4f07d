// Package highways talks to the National Highways closures API.
package highways

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/road-closures-service/internal/domain"
	"github.com/couchcryptid/road-closures-service/internal/observability"
)

// Fetch failure taxonomy, checked with errors.Is. A failed fetch fails the
// whole pipeline run; retry policy, if any, belongs to the caller.
var (
	// ErrNetwork wraps transport-level failures.
	ErrNetwork = errors.New("network failure")
	// ErrUpstreamStatus marks a non-2xx response from the API.
	ErrUpstreamStatus = errors.New("upstream error status")
	// ErrDecode marks a response body that is not valid JSON.
	ErrDecode = errors.New("response is not valid JSON")
)

// Client fetches the raw closures payload. It implements pipeline.Fetcher.
type Client struct {
	key        string
	url        string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a closures API client. The timeout bounds the whole
// request including body read.
func NewClient(key, url string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch performs one GET against the closures endpoint and returns the
// verbatim body plus its decoded form. The upstream is told not to serve a
// cached response; freshness policy lives entirely in our own payload cache.
func (c *Client) Fetch(ctx context.Context) ([]byte, *domain.ClosurePayload, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Response-MediaType", "application/json")
	req.Header.Set("X-Djson-Format", "DATEXII")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues("network").Inc()
		return nil, nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.FetchErrors.WithLabelValues("upstream").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, nil, fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, resp.StatusCode, body)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FetchErrors.WithLabelValues("network").Inc()
		return nil, nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	var payload domain.ClosurePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.metrics.FetchErrors.WithLabelValues("decode").Inc()
		return nil, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	c.metrics.Fetches.Inc()
	c.logger.Info("fetched closures payload",
		"bytes", len(raw),
		"situations", len(payload.D2Payload.Situations),
	)

	return raw, &payload, nil
}
