// Package brokerage talks to the Trading212 equity API: cash balance, open
// positions, order history and dividend history.
package brokerage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/upstream"
)

// Client is a Trading212 API client.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	log     logging.Logger
}

// NewClient creates a brokerage client. An empty API key means the brokerage
// is not linked; calls then fail with upstream.ErrNotConfigured.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if !c.Configured() {
		return upstream.ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", path, upstream.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

// GetCash returns the free cash balance of the account.
func (c *Client) GetCash(ctx context.Context) (Cash, error) {
	var cash Cash
	if err := c.get(ctx, "/equity/account/cash", &cash); err != nil {
		return Cash{}, err
	}
	return cash, nil
}

// GetPositions returns the open portfolio positions.
func (c *Client) GetPositions(ctx context.Context) ([]Position, error) {
	var positions []Position
	if err := c.get(ctx, "/equity/portfolio", &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// GetOrders returns up to limit executed orders, newest first.
func (c *Client) GetOrders(ctx context.Context, limit int) ([]Order, error) {
	var body struct {
		Items []Order `json:"items"`
	}
	path := fmt.Sprintf("/equity/history/orders?limit=%d", limit)
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// GetDividends returns up to limit dividend payments, newest first.
func (c *Client) GetDividends(ctx context.Context, limit int) ([]Dividend, error) {
	var body struct {
		Items []Dividend `json:"items"`
	}
	path := fmt.Sprintf("/history/dividends?limit=%d", limit)
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}
