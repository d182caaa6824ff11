// Package history reconstructs daily balance series by walking transaction
// deltas backwards from the current balance. The series is an approximation:
// it assumes the stored transactions fully explain the balance movement
// within the window.
package history

import (
	"time"

	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
)

// Point is the balance at the end of one calendar day.
type Point struct {
	Date    string          `csv:"date"`
	Balance decimal.Decimal `csv:"balance"`
}

// NetWorthPoint splits the end-of-day net worth by account kind.
type NetWorthPoint struct {
	Date       string          `csv:"date"`
	Bank       decimal.Decimal `csv:"bank"`
	Investment decimal.Decimal `csv:"investment"`
	Total      decimal.Decimal `csv:"total"`
}

// dayKey formats a time as the bucket key.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// deltasByDay sums signed transaction amounts per calendar day. Excluded
// transactions still move the balance, so they are counted here.
func deltasByDay(txs []models.Transaction) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		day := tx.Day()
		deltas[day] = deltas[day].Add(tx.Amount.Amount)
	}
	return deltas
}

// Reconstruct builds the daily series for the window ending today. The last
// point carries the current balance; each earlier point is the following
// day's balance minus that earlier day's own delta, the balance before that
// day's transactions. Days without transactions repeat the following day's
// balance. The series has windowDays+1 points, oldest first.
func Reconstruct(current decimal.Decimal, txs []models.Transaction, windowDays int, now time.Time) []Point {
	deltas := deltasByDay(txs)

	points := make([]Point, 0, windowDays+1)
	balance := current
	day := now

	// Walk backwards, then reverse into chronological order. Stepping into
	// a day undoes that day's transactions.
	for i := 0; i <= windowDays; i++ {
		points = append(points, Point{Date: dayKey(day), Balance: balance})
		day = day.AddDate(0, 0, -1)
		balance = balance.Sub(deltas[dayKey(day)])
	}
	reverse(points)
	return points
}

// ReconstructNetWorth builds the daily net worth series, tracking bank and
// investment balances separately. Transactions are attributed by their
// account kind.
func ReconstructNetWorth(bank, investment decimal.Decimal, txs []models.Transaction, windowDays int, now time.Time) []NetWorthPoint {
	var bankTxs, investTxs []models.Transaction
	for _, tx := range txs {
		if tx.AccountKind == models.AccountKindInvestment {
			investTxs = append(investTxs, tx)
		} else {
			bankTxs = append(bankTxs, tx)
		}
	}
	bankDeltas := deltasByDay(bankTxs)
	investDeltas := deltasByDay(investTxs)

	points := make([]NetWorthPoint, 0, windowDays+1)
	bankBal, investBal := bank, investment
	day := now

	for i := 0; i <= windowDays; i++ {
		points = append(points, NetWorthPoint{
			Date:       dayKey(day),
			Bank:       bankBal,
			Investment: investBal,
			Total:      bankBal.Add(investBal),
		})
		day = day.AddDate(0, 0, -1)
		bankBal = bankBal.Sub(bankDeltas[dayKey(day)])
		investBal = investBal.Sub(investDeltas[dayKey(day)])
	}
	reverseNetWorth(points)
	return points
}

func reverse(points []Point) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

func reverseNetWorth(points []NetWorthPoint) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
