package brokerage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fjacquet/finsync/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "api-key-1", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "api-key-1", 5*time.Second, nil)
}

func TestGetCash(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/equity/account/cash", r.URL.Path)
		fmt.Fprint(w, `{"free":1523.40,"currency":"EUR","total":2000.0}`)
	})

	cash, err := c.GetCash(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1523.40, cash.Free, 0.0001)
	assert.Equal(t, "EUR", cash.Currency)
}

func TestGetPositions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/equity/portfolio", r.URL.Path)
		fmt.Fprint(w, `[
			{"ticker":"AAPL_US_EQ","quantity":2.5,"currentPrice":180.0,"ppl":12.5},
			{"ticker":"VWCE_EU_EQ","quantity":10,"currentPrice":110.0,"ppl":-3.0}
		]`)
	})

	positions, err := c.GetPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.InDelta(t, 450.0, positions[0].MarketValue(), 0.0001)
	assert.InDelta(t, 1100.0, positions[1].MarketValue(), 0.0001)
}

func TestGetOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/equity/history/orders", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"items":[
			{"id":101,"type":"MARKET","ticker":"AAPL_US_EQ",
			 "dateExecuted":"2026-08-10T14:30:00.000Z",
			 "fillPrice":180.0,"filledQuantity":2.0,"status":"FILLED"},
			{"id":102,"type":"LIMIT","ticker":"VWCE_EU_EQ",
			 "dateCreated":"2026-08-11T09:00:00.000Z",
			 "fillPrice":110.0,"filledQuantity":1.0,"status":"FILLED"}
		]}`)
	})

	orders, err := c.GetOrders(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "2026-08-10T14:30:00.000Z", orders[0].EffectiveDate())
	assert.Equal(t, "2026-08-11T09:00:00.000Z", orders[1].EffectiveDate(), "falls back to dateCreated")
}

func TestGetDividends(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history/dividends", r.URL.Path)
		fmt.Fprint(w, `{"items":[
			{"reference":"ref-1","ticker":"AAPL_US_EQ","amount":1.25,"paidOn":"2026-08-15T00:00:00.000Z"}
		]}`)
	})

	dividends, err := c.GetDividends(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, dividends, 1)
	assert.Equal(t, "ref-1", dividends[0].Reference)
}

func TestRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GetCash(context.Background())
	assert.ErrorIs(t, err, upstream.ErrRateLimited)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("http://unused", "", 5*time.Second, nil)
	assert.False(t, c.Configured())

	_, err := c.GetPositions(context.Background())
	assert.ErrorIs(t, err, upstream.ErrNotConfigured)
}
