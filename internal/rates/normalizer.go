package rates

import (
	"context"
	"sync"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"
)

// Normalizer converts Money values into a target currency, memoizing one rate
// per currency pair. A fresh Normalizer is created for each sync pass so all
// conversions within the pass use the same rate and each pair costs at most
// one upstream call.
type Normalizer struct {
	source Source
	target string
	log    logging.Logger

	mu    sync.Mutex
	cache map[string]float64 // "FROM/TO" -> rate
}

// NewNormalizer creates a normalizer converting into the target currency.
func NewNormalizer(source Source, targetCurrency string, logger logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Normalizer{
		source: source,
		target: targetCurrency,
		log:    logger,
		cache:  make(map[string]float64),
	}
}

// Target returns the currency this normalizer converts into.
func (n *Normalizer) Target() string {
	return n.target
}

// Rate returns the conversion rate from the given currency into the target.
// Identical currencies cost nothing. A source failure logs a warning and
// degrades to 1.0; the fallback is cached so the pair fails only once per
// pass.
func (n *Normalizer) Rate(ctx context.Context, from string) float64 {
	if from == n.target {
		return 1.0
	}

	key := from + "/" + n.target
	n.mu.Lock()
	defer n.mu.Unlock()

	if rate, ok := n.cache[key]; ok {
		return rate
	}

	rate, err := n.source.GetRate(ctx, from, n.target)
	if err != nil {
		n.log.WithError(err).WithFields(
			logging.Field{Key: logging.FieldCurrencyFrom, Value: from},
			logging.Field{Key: logging.FieldCurrencyTo, Value: n.target},
		).Warn("Rate lookup failed, falling back to 1.0")
		rate = 1.0
	} else {
		n.log.WithFields(
			logging.Field{Key: logging.FieldCurrencyFrom, Value: from},
			logging.Field{Key: logging.FieldCurrencyTo, Value: n.target},
			logging.Field{Key: logging.FieldRate, Value: rate},
		).Debug("Fetched conversion rate")
	}

	n.cache[key] = rate
	return rate
}

// Normalize converts a Money value into the target currency.
func (n *Normalizer) Normalize(ctx context.Context, m models.Money) models.Money {
	if m.Currency == n.target {
		return m
	}
	return m.Convert(n.Rate(ctx, m.Currency), n.target)
}
