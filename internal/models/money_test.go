package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDay(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("-1250.50", "CZK")
	require.NoError(t, err)
	assert.Equal(t, "-1250.50 CZK", m.String())
	assert.True(t, m.IsNegative())

	_, err = NewMoneyFromString("not-a-number", "CZK")
	assert.Error(t, err)
}

func TestMoneyAdd(t *testing.T) {
	a := NewMoneyFromFloat(100, "CZK")
	b := NewMoneyFromFloat(-30, "CZK")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "70.00 CZK", sum.String())

	_, err = a.Add(NewMoneyFromFloat(1, "EUR"))
	assert.Error(t, err, "currency mismatch must fail")
}

func TestMoneyConvert(t *testing.T) {
	eur := NewMoneyFromFloat(10, "EUR")

	czk := eur.Convert(24.5, "CZK")
	assert.Equal(t, "CZK", czk.Currency)
	assert.InDelta(t, 245.0, czk.Float64(), 0.0001)

	// Same-currency conversion is a no-op regardless of the rate.
	same := eur.Convert(0.5, "EUR")
	assert.True(t, same.Equal(eur))
}

func TestTransactionDay(t *testing.T) {
	tx := Transaction{Date: mustDay("2026-08-05")}
	assert.Equal(t, "2026-08-05", tx.Day())
}

func TestBudgetLineItemMyAmount(t *testing.T) {
	li := BudgetLineItem{Amount: decimal.NewFromInt(15000), MyPercentage: 50}
	assert.Equal(t, "7500", li.MyAmount().String())

	full := BudgetLineItem{Amount: decimal.NewFromInt(600), MyPercentage: 100}
	assert.Equal(t, "600", full.MyAmount().String())
}
