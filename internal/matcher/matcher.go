// Package matcher reconciles a month's expected expenses against the
// imported expense transactions. Matching is pure: the caller persists the
// resulting assignments.
package matcher

import (
	"strings"

	"fjacquet/finsync/internal/logging"
	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
)

// Assignment pairs one line item with the transaction that settles it.
type Assignment struct {
	LineItemID    int64
	TransactionID string
	Strategy      string
}

// Result is the outcome of one matching pass.
type Result struct {
	Assignments []Assignment
	ByPattern   int
	ByAmount    int
	ByCategory  int
}

// Matched reports the total number of assignments.
func (r Result) Matched() int {
	return len(r.Assignments)
}

// matchStrategy tries to find a transaction settling the line item among the
// candidates not yet consumed by an earlier assignment.
type matchStrategy interface {
	name() string
	tryMatch(item models.BudgetLineItem, candidates []models.Transaction, consumed map[string]bool) (models.Transaction, bool)
}

// Matcher runs the fixed strategy cascade: pattern, then amount, then
// category. Candidates are consumed exclusively, so two line items never
// settle against the same transaction.
type Matcher struct {
	strategies []matchStrategy
	log        logging.Logger
}

// New creates a matcher with the standard cascade.
func New(logger logging.Logger) *Matcher {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Matcher{
		strategies: []matchStrategy{
			patternStrategy{},
			amountStrategy{tolerance: decimal.NewFromFloat(0.05)},
			categoryStrategy{tolerance: decimal.NewFromFloat(0.20)},
		},
		log: logger,
	}
}

// Match reconciles the line items against the candidate transactions.
// Already-paid items are skipped; excluded transactions never participate.
// Items are processed in the order given, so the caller's stable ordering
// decides who wins a contested transaction.
func (m *Matcher) Match(items []models.BudgetLineItem, candidates []models.Transaction) Result {
	eligible := make([]models.Transaction, 0, len(candidates))
	for _, tx := range candidates {
		if !tx.Excluded {
			eligible = append(eligible, tx)
		}
	}

	var result Result
	consumed := make(map[string]bool)

	for _, item := range items {
		if item.Paid {
			continue
		}
		for _, strategy := range m.strategies {
			tx, ok := strategy.tryMatch(item, eligible, consumed)
			if !ok {
				continue
			}
			consumed[tx.ID] = true
			result.Assignments = append(result.Assignments, Assignment{
				LineItemID:    item.ID,
				TransactionID: tx.ID,
				Strategy:      strategy.name(),
			})
			switch strategy.name() {
			case strategyPattern:
				result.ByPattern++
			case strategyAmount:
				result.ByAmount++
			case strategyCategory:
				result.ByCategory++
			}
			m.log.WithFields(
				logging.Field{Key: logging.FieldStrategy, Value: strategy.name()},
				logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
				logging.Field{Key: "line_item_id", Value: item.ID},
			).Debug("Matched expected expense")
			break
		}
	}
	return result
}

const (
	strategyPattern  = "pattern"
	strategyAmount   = "amount"
	strategyCategory = "category"
)

// patternStrategy matches when the item's pattern occurs in the transaction
// description, case-insensitively.
type patternStrategy struct{}

func (patternStrategy) name() string { return strategyPattern }

func (patternStrategy) tryMatch(item models.BudgetLineItem, candidates []models.Transaction, consumed map[string]bool) (models.Transaction, bool) {
	pattern := strings.ToLower(strings.TrimSpace(item.MatchPattern))
	if pattern == "" {
		return models.Transaction{}, false
	}
	for _, tx := range candidates {
		if consumed[tx.ID] {
			continue
		}
		if strings.Contains(strings.ToLower(tx.Description), pattern) {
			return tx, true
		}
	}
	return models.Transaction{}, false
}

// amountStrategy matches when the transaction magnitude is within 5% of the
// item's expected amount.
type amountStrategy struct {
	tolerance decimal.Decimal
}

func (amountStrategy) name() string { return strategyAmount }

func (s amountStrategy) tryMatch(item models.BudgetLineItem, candidates []models.Transaction, consumed map[string]bool) (models.Transaction, bool) {
	return matchByAmount(item, candidates, consumed, s.tolerance, "")
}

// categoryStrategy matches when the transaction carries the item's category
// and its magnitude is within 20% of the item's expected amount. Items
// without a category never match here.
type categoryStrategy struct {
	tolerance decimal.Decimal
}

func (categoryStrategy) name() string { return strategyCategory }

func (s categoryStrategy) tryMatch(item models.BudgetLineItem, candidates []models.Transaction, consumed map[string]bool) (models.Transaction, bool) {
	if item.Category == "" {
		return models.Transaction{}, false
	}
	return matchByAmount(item, candidates, consumed, s.tolerance, item.Category)
}

// matchByAmount compares transaction magnitudes against the item's full
// expected amount. The bank records the whole bill even when the user only
// owes a share, so MyAmount plays no part here.
func matchByAmount(item models.BudgetLineItem, candidates []models.Transaction, consumed map[string]bool, tolerance decimal.Decimal, category string) (models.Transaction, bool) {
	expected := item.Amount.Abs()
	if expected.IsZero() {
		return models.Transaction{}, false
	}
	allowed := expected.Mul(tolerance)

	for _, tx := range candidates {
		if consumed[tx.ID] {
			continue
		}
		if category != "" && tx.Category != category {
			continue
		}
		diff := tx.Amount.Amount.Abs().Sub(expected).Abs()
		if diff.LessThanOrEqual(allowed) {
			return tx, true
		}
	}
	return models.Transaction{}, false
}
