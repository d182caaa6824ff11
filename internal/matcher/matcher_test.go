package matcher

import (
	"testing"
	"time"

	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(id, desc string, amount float64, category string) models.Transaction {
	return models.Transaction{
		ID:          id,
		AccountID:   "acc-1",
		Date:        time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      models.NewMoneyFromFloat(amount, "CZK"),
		Category:    category,
		AccountKind: models.AccountKindBank,
	}
}

func item(id int64, name string, amount float64, pattern, category string) models.BudgetLineItem {
	return models.BudgetLineItem{
		ID:           id,
		Period:       "2026-08",
		Name:         name,
		Amount:       decimal.NewFromFloat(amount),
		MyPercentage: 100,
		MatchPattern: pattern,
		Category:     category,
	}
}

func TestMatchByPattern(t *testing.T) {
	m := New(nil)

	result := m.Match(
		[]models.BudgetLineItem{item(1, "Rent", 15000, "Landlord", "")},
		[]models.Transaction{
			expense("t1", "Payment to LANDLORD a.s.", -15500, ""),
			expense("t2", "Lidl", -300, models.CategoryFood),
		},
	)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, Assignment{LineItemID: 1, TransactionID: "t1", Strategy: "pattern"}, result.Assignments[0])
	assert.Equal(t, 1, result.ByPattern)
	assert.Zero(t, result.ByAmount)
}

func TestMatchByAmountWithinFivePercent(t *testing.T) {
	m := New(nil)
	items := []models.BudgetLineItem{item(1, "Internet", 1000, "", "")}

	// -980 is within 5% of 1000.
	result := m.Match(items, []models.Transaction{expense("t1", "random payment", -980, "")})
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 1, result.ByAmount)

	// -900 is outside 5% and there is no category to widen the tolerance.
	result = m.Match(items, []models.Transaction{expense("t2", "random payment", -900, "")})
	assert.Empty(t, result.Assignments)
}

func TestMatchByCategoryWidensTolerance(t *testing.T) {
	m := New(nil)
	tx := expense("t1", "electricity bill", -900, models.CategoryUtilities)

	// Same 10% deviation, but the category match allows it.
	result := m.Match([]models.BudgetLineItem{item(1, "Power", 1000, "", models.CategoryUtilities)},
		[]models.Transaction{tx})
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 1, result.ByCategory)

	// Without a category on the item, the 20% band never applies.
	result = m.Match([]models.BudgetLineItem{item(2, "Power", 1000, "", "")},
		[]models.Transaction{tx})
	assert.Empty(t, result.Assignments)

	// Category mismatch blocks the widened band.
	result = m.Match([]models.BudgetLineItem{item(3, "Power", 1000, "", models.CategoryFood)},
		[]models.Transaction{tx})
	assert.Empty(t, result.Assignments)
}

func TestMatchConsumesTransactionsExclusively(t *testing.T) {
	m := New(nil)

	result := m.Match(
		[]models.BudgetLineItem{
			item(1, "Spotify", 200, "spotify", ""),
			item(2, "Music", 200, "spotify", ""),
		},
		[]models.Transaction{expense("t1", "SPOTIFY AB", -200, "")},
	)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, int64(1), result.Assignments[0].LineItemID, "first item in order wins")
}

func TestMatchSkipsPaidItems(t *testing.T) {
	m := New(nil)
	paid := item(1, "Rent", 15000, "landlord", "")
	paid.Paid = true

	result := m.Match(
		[]models.BudgetLineItem{paid},
		[]models.Transaction{expense("t1", "landlord payment", -15000, "")},
	)
	assert.Empty(t, result.Assignments)
}

func TestMatchSkipsExcludedTransactions(t *testing.T) {
	m := New(nil)
	tx := expense("t1", "landlord payment", -15000, models.CategoryInternalTransfer)
	tx.Excluded = true

	result := m.Match(
		[]models.BudgetLineItem{item(1, "Rent", 15000, "landlord", "")},
		[]models.Transaction{tx},
	)
	assert.Empty(t, result.Assignments)
}

func TestMatchSharedItemUsesFullAmount(t *testing.T) {
	m := New(nil)
	shared := item(1, "Rent", 1000, "", "")
	shared.MyPercentage = 50

	// The bank records the whole bill regardless of the user's share, so the
	// 5% band sits around 1000, not 500.
	result := m.Match([]models.BudgetLineItem{shared},
		[]models.Transaction{expense("t1", "rent transfer", -990, "")})
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 1, result.ByAmount)

	result = m.Match([]models.BudgetLineItem{shared},
		[]models.Transaction{expense("t1", "rent transfer", -500, "")})
	assert.Empty(t, result.Assignments)
}

func TestMatchNegativeItemAmount(t *testing.T) {
	m := New(nil)

	// Items entered with a signed amount still match on magnitude.
	result := m.Match(
		[]models.BudgetLineItem{item(1, "Internet", -600, "", "")},
		[]models.Transaction{expense("t1", "isp payment", -610, "")},
	)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 1, result.ByAmount)
}

func TestMatchDeterministicOnRepeat(t *testing.T) {
	m := New(nil)
	items := []models.BudgetLineItem{
		item(1, "Groceries", 1000, "", models.CategoryFood),
		item(2, "Internet", 600, "internet", ""),
	}
	candidates := []models.Transaction{
		expense("t1", "LIDL", -1000, models.CategoryFood),
		expense("t2", "internet fee", -600, ""),
	}

	first := m.Match(items, candidates)
	second := m.Match(items, candidates)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.Matched())
}

func TestMatchStrategyCounts(t *testing.T) {
	m := New(nil)

	result := m.Match(
		[]models.BudgetLineItem{
			item(1, "Rent", 15000, "landlord", ""),
			item(2, "Internet", 600, "", ""),
			item(3, "Power", 1000, "", models.CategoryUtilities),
		},
		[]models.Transaction{
			expense("t1", "landlord s.r.o.", -14000, ""),
			expense("t2", "isp payment", -610, ""),
			expense("t3", "cez group", -1150, models.CategoryUtilities),
		},
	)

	assert.Equal(t, 3, result.Matched())
	assert.Equal(t, 1, result.ByPattern)
	assert.Equal(t, 1, result.ByAmount)
	assert.Equal(t, 1, result.ByCategory)
}
