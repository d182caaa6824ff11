package bankfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fjacquet/finsync/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	var tokenRequests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/new/" {
			tokenRequests++
			require.LessOrEqual(t, tokenRequests, 1, "token must be cached across calls")

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "sid", creds["secret_id"])
			assert.Equal(t, "skey", creds["secret_key"])

			fmt.Fprint(w, `{"access":"tok-1","access_expires":86400}`)
			return
		}
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListBalances(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc-1/balances/", r.URL.Path)
		fmt.Fprint(w, `{"balances":[
			{"balanceAmount":{"amount":"1000.50","currency":"CZK"},"balanceType":"closingBooked"},
			{"balanceAmount":{"amount":"1010.00","currency":"CZK"},"balanceType":"interimAvailable"},
			{"balanceAmount":{"amount":"oops","currency":"CZK"},"balanceType":"expected"}
		]}`)
	})

	c := NewClient(srv.URL, "sid", "skey", 5*time.Second, nil)
	balances, err := c.ListBalances(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, balances, 2, "unparseable entries are skipped")

	preferred, ok := PreferredBalance(balances)
	require.True(t, ok)
	assert.Equal(t, "interimAvailable", preferred.Type)
	assert.InDelta(t, 1010.0, preferred.Amount.Float64(), 0.0001)
}

func TestListTransactions(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/acc-1/transactions/", r.URL.Path)
		assert.Equal(t, "2026-06-01", r.URL.Query().Get("date_from"))
		assert.Equal(t, "2026-08-29", r.URL.Query().Get("date_to"))
		fmt.Fprint(w, `{"transactions":{"booked":[
			{"transactionId":"t1","bookingDate":"2026-08-01",
			 "transactionAmount":{"amount":"-250.00","currency":"CZK"},
			 "remittanceInformationUnstructured":"LIDL Praha"},
			{"internalTransactionId":"int-2","valueDate":"2026-08-02",
			 "transactionAmount":{"amount":"45000.00","currency":"CZK"},
			 "debtorName":"Employer s.r.o."}
		]}}`)
	})

	c := NewClient(srv.URL, "sid", "skey", 5*time.Second, nil)
	txs, err := c.ListTransactions(context.Background(), "acc-1", "2026-06-01", "2026-08-29")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "t1", txs[0].EffectiveID())
	assert.Equal(t, "2026-08-01", txs[0].EffectiveDate())
	assert.Equal(t, "LIDL Praha", txs[0].Description())

	assert.Equal(t, "int-2", txs[1].EffectiveID())
	assert.Equal(t, "2026-08-02", txs[1].EffectiveDate())
	assert.Equal(t, "Employer s.r.o.", txs[1].Description())
}

func TestRateLimitClassified(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c := NewClient(srv.URL, "sid", "skey", 5*time.Second, nil)
	_, err := c.ListBalances(context.Background(), "acc-1")
	assert.ErrorIs(t, err, upstream.ErrRateLimited)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("http://unused", "", "", 5*time.Second, nil)
	assert.False(t, c.Configured())

	_, err := c.ListBalances(context.Background(), "acc-1")
	assert.ErrorIs(t, err, upstream.ErrNotConfigured)
}

func TestPreferredBalanceOrder(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  string
	}{
		{"interimAvailable wins", []string{"closingBooked", "interimAvailable"}, "interimAvailable"},
		{"closingBooked next", []string{"openingBooked", "closingBooked", "interimBooked"}, "closingBooked"},
		{"interimBooked next", []string{"openingBooked", "interimBooked"}, "interimBooked"},
		{"openingBooked next", []string{"forwardAvailable", "openingBooked"}, "openingBooked"},
		{"first entry fallback", []string{"forwardAvailable", "expected"}, "forwardAvailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var balances []Balance
			for _, typ := range tt.types {
				balances = append(balances, Balance{Type: typ})
			}
			got, ok := PreferredBalance(balances)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Type)
		})
	}

	_, ok := PreferredBalance(nil)
	assert.False(t, ok)
}

func TestFeedTransactionDescriptionFallback(t *testing.T) {
	tx := FeedTransaction{CreditorName: "Creditor", DebtorName: "Debtor"}
	assert.Equal(t, "Creditor", tx.Description())

	tx.CreditorName = ""
	assert.Equal(t, "Debtor", tx.Description())

	tx.DebtorName = ""
	assert.Empty(t, tx.Description())
}
