package history

import (
	"testing"
	"time"

	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)

func tx(day string, amount float64, kind models.AccountKind) models.Transaction {
	d, _ := time.Parse("2006-01-02", day)
	return models.Transaction{
		ID:          day + "-" + string(kind),
		Date:        d,
		Amount:      models.NewMoneyFromFloat(amount, "CZK"),
		AccountKind: kind,
	}
}

func bankTx(day string, amount float64) models.Transaction {
	return tx(day, amount, models.AccountKindBank)
}

func balances(points []Point) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Balance.String()
	}
	return out
}

func TestReconstructWalksBackwards(t *testing.T) {
	// A 500 expense yesterday means yesterday started 500 higher than the
	// current balance.
	points := Reconstruct(decimal.NewFromInt(10000),
		[]models.Transaction{bankTx("2026-08-28", -500)}, 1, now)

	require.Len(t, points, 2)
	assert.Equal(t, "2026-08-28", points[0].Date)
	assert.Equal(t, "10500", points[0].Balance.String())
	assert.Equal(t, "2026-08-29", points[1].Date)
	assert.Equal(t, "10000", points[1].Balance.String())
}

func TestReconstructQuietDaysRepeatBalance(t *testing.T) {
	points := Reconstruct(decimal.NewFromInt(5000),
		[]models.Transaction{bankTx("2026-08-27", -1000)}, 3, now)

	require.Len(t, points, 4)
	assert.Equal(t, []string{"6000", "6000", "5000", "5000"}, balances(points))
}

func TestReconstructMultipleTransactionsSameDay(t *testing.T) {
	points := Reconstruct(decimal.NewFromInt(1000), []models.Transaction{
		bankTx("2026-08-28", -200),
		bankTx("2026-08-28", -300),
		bankTx("2026-08-28", 100),
	}, 1, now)

	require.Len(t, points, 2)
	// Net delta yesterday is -400.
	assert.Equal(t, "1400", points[0].Balance.String())
}

func TestReconstructRoundTrip(t *testing.T) {
	txs := []models.Transaction{
		bankTx("2026-08-25", 45000),
		bankTx("2026-08-26", -300),
		bankTx("2026-08-27", -1200),
		bankTx("2026-08-29", -250),
	}
	current := decimal.NewFromInt(50000)
	points := Reconstruct(current, txs, 7, now)
	require.Len(t, points, 8)

	// Replaying each day's delta forward from the oldest point must land on
	// the next point and end at the current balance.
	deltas := deltasByDay(txs)
	balance := points[0].Balance
	for i := 1; i < len(points); i++ {
		balance = balance.Add(deltas[points[i-1].Date])
		assert.Equal(t, points[i].Balance.String(), balance.String(), "day %s", points[i].Date)
	}
	assert.Equal(t, current.String(), balance.String())
}

func TestReconstructNoTransactions(t *testing.T) {
	points := Reconstruct(decimal.NewFromInt(777), nil, 2, now)
	require.Len(t, points, 3)
	assert.Equal(t, []string{"777", "777", "777"}, balances(points))
}

func TestReconstructNetWorthSplitsByKind(t *testing.T) {
	points := ReconstructNetWorth(
		decimal.NewFromInt(10000), decimal.NewFromInt(20000),
		[]models.Transaction{
			bankTx("2026-08-28", -500),
			tx("2026-08-28", -2000, models.AccountKindInvestment),
		}, 1, now)

	require.Len(t, points, 2)
	assert.Equal(t, "10500", points[0].Bank.String())
	assert.Equal(t, "22000", points[0].Investment.String())
	assert.Equal(t, "32500", points[0].Total.String())
	assert.Equal(t, "30000", points[1].Total.String())
}

func TestReconstructNetWorthTotalIsSum(t *testing.T) {
	points := ReconstructNetWorth(
		decimal.NewFromInt(1000), decimal.NewFromInt(500),
		[]models.Transaction{
			bankTx("2026-08-28", -100),
			tx("2026-08-27", 50, models.AccountKindInvestment),
		}, 5, now)

	for _, p := range points {
		assert.Equal(t, p.Bank.Add(p.Investment).String(), p.Total.String(), "day %s", p.Date)
	}
}
