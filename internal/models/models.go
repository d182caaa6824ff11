// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind distinguishes bank accounts from the brokerage account.
type AccountKind string

const (
	AccountKindBank       AccountKind = "bank"
	AccountKindInvestment AccountKind = "investment"
)

// Account represents a connected bank or investment account.
// The sync pass owns Balance, Currency and LastSynced; display metadata
// (Name, Hidden) may be edited independently.
type Account struct {
	ID          string
	Name        string
	Kind        AccountKind
	Balance     Money
	Institution string
	LastSynced  time.Time
	Hidden      bool
}

// Transaction is a single bank or brokerage transaction as persisted locally.
// ID is the upstream identifier, or a synthesized one when the upstream
// delivers none. Excluded marks internal/family transfers that must be
// omitted from income/expense aggregates.
type Transaction struct {
	ID          string
	AccountID   string
	Date        time.Time // calendar day granularity
	Description string
	Amount      Money
	Category    string // empty when not yet categorized
	Excluded    bool
	AccountKind AccountKind
	RawJSON     string
}

// Day returns the transaction date formatted as YYYY-MM-DD.
func (t Transaction) Day() string {
	return t.Date.Format("2006-01-02")
}

// RuleOrigin tells whether a categorization rule was authored by the user
// or learned automatically from a manual correction.
type RuleOrigin string

const (
	RuleOriginUser    RuleOrigin = "user"
	RuleOriginLearned RuleOrigin = "learned"
)

// CategoryRule maps a lowercase text pattern to a category. MatchCount is
// incremented each time the rule fires and never decreases.
type CategoryRule struct {
	ID         int64
	Pattern    string
	Category   string
	Origin     RuleOrigin
	MatchCount int
}

// RecurringExpense is a template for an expected monthly expense. MatchPattern
// and Category are inherited by the line items instantiated from it.
type RecurringExpense struct {
	ID            int64
	Name          string
	DefaultAmount decimal.Decimal
	MyPercentage  int
	MatchPattern  string
	Category      string
}

// BudgetLineItem is one expected expense within a budgeting period.
// MatchPattern and Category are inherited from the recurring template when
// present. Only the matcher (or an explicit user edit) flips Paid and sets
// MatchedTransactionID.
type BudgetLineItem struct {
	ID                   int64
	Period               string // YYYY-MM
	Name                 string
	Amount               decimal.Decimal
	MyPercentage         int
	Paid                 bool
	MatchedTransactionID string
	RecurringExpenseID   int64 // 0 when not derived from a template
	MatchPattern         string
	Category             string
}

// MyAmount returns the share of the expense owed by the user.
func (li BudgetLineItem) MyAmount() decimal.Decimal {
	pct := decimal.NewFromInt(int64(li.MyPercentage))
	return li.Amount.Mul(pct).Div(decimal.NewFromInt(100))
}

// RunStatus is the lifecycle state of a sync run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	// RunStatusNever is reported when no run has ever been recorded.
	// It is a status value, not an error.
	RunStatusNever RunStatus = "never"
)

// SyncRun tracks one execution of the full resynchronization pipeline.
// Rows are append-only; a run in a terminal state is never mutated.
type SyncRun struct {
	ID                 int64
	StartedAt          time.Time
	CompletedAt        time.Time // zero while running
	Status             RunStatus
	Error              string // accumulated non-fatal errors, or the fatal one
	AccountsSynced     int
	TransactionsSynced int
}
