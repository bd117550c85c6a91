// Package rammb adapts the RAMMB/CIRA tc_realtime pages into the aggregation
// pipeline's source contract: storm discovery from the index page, advisory
// link resolution from per-storm pages, and ATCF deck retrieval.
package rammb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Fetcher is the narrow fetch capability the adapter depends on: one URL in,
// raw document text out. Retries, if any, belong behind this interface.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// Client implements Fetcher over plain HTTP with a fixed per-request timeout.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an upstream HTTP client. Every fetch is bounded by timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves one document. Non-2xx responses yield a *StatusError;
// transport failures are wrapped with the URL for context.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &StatusError{Code: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
