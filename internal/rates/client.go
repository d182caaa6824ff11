// Package rates converts transaction amounts into the configured target
// currency using the Frankfurter exchange rate API. Rate lookups are
// best-effort: a failed lookup degrades to a 1.0 rate rather than failing
// the sync pass.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fjacquet/finsync/internal/logging"
)

// Source provides an exchange rate between two currencies.
type Source interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// Client fetches rates from a Frankfurter-compatible endpoint.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     logging.Logger
}

// NewClient creates a rate client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     logger,
	}
}

type latestResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// GetRate returns the latest rate converting one unit of from into to.
func (c *Client) GetRate(ctx context.Context, from, to string) (float64, error) {
	u := fmt.Sprintf("%s/latest?from=%s&to=%s", c.baseURL, url.QueryEscape(from), url.QueryEscape(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("building rate request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching rate %s/%s: %w", from, to, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate endpoint returned %d for %s/%s", resp.StatusCode, from, to)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decoding rate response: %w", err)
	}

	rate, ok := body.Rates[to]
	if !ok {
		return 0, fmt.Errorf("rate response missing %s", to)
	}
	return rate, nil
}
