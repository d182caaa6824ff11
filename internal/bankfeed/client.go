// Package bankfeed talks to the GoCardless Bank Account Data API. It fetches
// account balances and booked transactions for the accounts the user has
// linked.
package bankfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/upstream"
)

// Client is a GoCardless Bank Account Data API client. Access tokens are
// fetched lazily and cached until they expire.
type Client struct {
	baseURL   string
	secretID  string
	secretKey string
	httpc     *http.Client
	log       logging.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a bank feed client. Secrets may be empty; calls then fail
// with upstream.ErrNotConfigured.
func NewClient(baseURL, secretID, secretKey string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Client{
		baseURL:   baseURL,
		secretID:  secretID,
		secretKey: secretKey,
		httpc:     &http.Client{Timeout: timeout},
		log:       logger,
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.secretID != "" && c.secretKey != ""
}

type tokenResponse struct {
	Access        string `json:"access"`
	AccessExpires int    `json:"access_expires"`
}

// token returns a valid access token, requesting a new one when the cached
// token is missing or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", upstream.ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"secret_id":  c.secretID,
		"secret_key": c.secretKey,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/new/", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(resp.StatusCode, "token"); err != nil {
		return "", err
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if body.Access == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	c.accessToken = body.Access
	// Refresh a minute early to avoid using a token at the edge of expiry.
	expires := time.Duration(body.AccessExpires) * time.Second
	if expires <= 0 {
		expires = 24 * time.Hour
	}
	c.tokenExpiry = time.Now().Add(expires - time.Minute)

	c.log.Debug("Obtained bank feed access token")
	return c.accessToken, nil
}

// get performs an authorized GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyStatus(resp.StatusCode, path); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

func classifyStatus(status int, what string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", what, upstream.ErrRateLimited)
	case status < 200 || status > 299:
		return fmt.Errorf("%s returned status %d", what, status)
	}
	return nil
}

// ListBalances returns the balance entries reported for an account.
func (c *Client) ListBalances(ctx context.Context, accountID string) ([]Balance, error) {
	var body struct {
		Balances []balanceEntry `json:"balances"`
	}
	path := fmt.Sprintf("/accounts/%s/balances/", accountID)
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}

	balances := make([]Balance, 0, len(body.Balances))
	for _, b := range body.Balances {
		bal, err := b.toBalance()
		if err != nil {
			c.log.WithError(err).WithField(logging.FieldAccountID, accountID).
				Warn("Skipping unparseable balance entry")
			continue
		}
		balances = append(balances, bal)
	}
	return balances, nil
}

// ListTransactions returns the booked transactions of an account within the
// date window (both bounds inclusive, YYYY-MM-DD).
func (c *Client) ListTransactions(ctx context.Context, accountID, dateFrom, dateTo string) ([]FeedTransaction, error) {
	var body struct {
		Transactions struct {
			Booked []FeedTransaction `json:"booked"`
		} `json:"transactions"`
	}
	path := fmt.Sprintf("/accounts/%s/transactions/?date_from=%s&date_to=%s", accountID, dateFrom, dateTo)
	if err := c.get(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Transactions.Booked, nil
}
