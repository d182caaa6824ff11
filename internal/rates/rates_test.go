package rates

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		assert.Equal(t, "CZK", r.URL.Query().Get("to"))
		fmt.Fprint(w, `{"amount":1.0,"base":"EUR","rates":{"CZK":24.58}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	rate, err := c.GetRate(context.Background(), "EUR", "CZK")
	require.NoError(t, err)
	assert.InDelta(t, 24.58, rate, 0.0001)
}

func TestClientGetRateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"missing pair", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"rates":{"USD":1.08}}`)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.URL, 5*time.Second, nil)
			_, err := c.GetRate(context.Background(), "EUR", "CZK")
			assert.Error(t, err)
		})
	}
}

// countingSource counts upstream calls and serves a fixed rate or error.
type countingSource struct {
	rate  float64
	err   error
	calls int
}

func (s *countingSource) GetRate(ctx context.Context, from, to string) (float64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.rate, nil
}

func TestNormalizerSameCurrencyNoCall(t *testing.T) {
	src := &countingSource{rate: 24.5}
	n := NewNormalizer(src, "CZK", nil)

	assert.Equal(t, 1.0, n.Rate(context.Background(), "CZK"))
	assert.Zero(t, src.calls)
}

func TestNormalizerMemoizesPerPair(t *testing.T) {
	src := &countingSource{rate: 24.5}
	n := NewNormalizer(src, "CZK", nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.Equal(t, 24.5, n.Rate(ctx, "EUR"))
	}
	assert.Equal(t, 1, src.calls, "one upstream call per pair per pass")

	n.Rate(ctx, "USD")
	assert.Equal(t, 2, src.calls)
}

func TestNormalizerFallbackCached(t *testing.T) {
	src := &countingSource{err: fmt.Errorf("boom")}
	log := logging.NewMockLogger()
	n := NewNormalizer(src, "CZK", log)
	ctx := context.Background()

	assert.Equal(t, 1.0, n.Rate(ctx, "EUR"))
	assert.Equal(t, 1.0, n.Rate(ctx, "EUR"))
	assert.Equal(t, 1, src.calls, "failed pair must not retry within the pass")
	assert.True(t, log.HasMessage("Rate lookup failed, falling back to 1.0"))
}

func TestNormalizeConvertsMoney(t *testing.T) {
	src := &countingSource{rate: 25.0}
	n := NewNormalizer(src, "CZK", nil)

	got := n.Normalize(context.Background(), models.NewMoneyFromFloat(-10, "EUR"))
	assert.Equal(t, "CZK", got.Currency)
	assert.InDelta(t, -250.0, got.Float64(), 0.0001)

	same := n.Normalize(context.Background(), models.NewMoneyFromFloat(100, "CZK"))
	assert.InDelta(t, 100.0, same.Float64(), 0.0001)
}
