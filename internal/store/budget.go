package store

import (
	"database/sql"

	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
)

// InsertRecurringExpense creates a recurring expense template and returns its id.
func (s *Store) InsertRecurringExpense(r models.RecurringExpense) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO recurring_expenses
		(name, default_amount, my_percentage, match_pattern, category)
		VALUES (?, ?, ?, ?, ?)`,
		r.Name, r.DefaultAmount.String(), r.MyPercentage,
		nullable(r.MatchPattern), nullable(r.Category))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRecurringExpenses returns all recurring expense templates ordered by id.
func (s *Store) ListRecurringExpenses() ([]models.RecurringExpense, error) {
	rows, err := s.db.Query(`SELECT id, name, default_amount, my_percentage, match_pattern, category
		FROM recurring_expenses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []models.RecurringExpense
	for rows.Next() {
		var r models.RecurringExpense
		var amount string
		var pattern, category sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &amount, &r.MyPercentage, &pattern, &category); err != nil {
			return nil, err
		}
		r.DefaultAmount, _ = decimal.NewFromString(amount)
		r.MatchPattern = pattern.String
		r.Category = category.String
		result = append(result, r)
	}
	return result, rows.Err()
}

// InsertLineItem creates a budget line item for a period and returns its id.
func (s *Store) InsertLineItem(li models.BudgetLineItem) (int64, error) {
	var recurringID interface{}
	if li.RecurringExpenseID != 0 {
		recurringID = li.RecurringExpenseID
	}
	res, err := s.db.Exec(`INSERT INTO budget_line_items
		(period, name, amount, my_percentage, paid, matched_transaction_id, recurring_expense_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		li.Period, li.Name, li.Amount.String(), li.MyPercentage,
		boolToInt(li.Paid), nullable(li.MatchedTransactionID), recurringID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListLineItems returns the line items of a period ordered by id, with the
// match pattern and category inherited from their recurring templates.
func (s *Store) ListLineItems(period string) ([]models.BudgetLineItem, error) {
	rows, err := s.db.Query(`SELECT li.id, li.period, li.name, li.amount, li.my_percentage,
		li.paid, li.matched_transaction_id, li.recurring_expense_id,
		re.match_pattern, re.category
		FROM budget_line_items li
		LEFT JOIN recurring_expenses re ON re.id = li.recurring_expense_id
		WHERE li.period = ?
		ORDER BY li.id`, period)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []models.BudgetLineItem
	for rows.Next() {
		var li models.BudgetLineItem
		var amount string
		var paid int
		var matchedTx, pattern, category sql.NullString
		var recurringID sql.NullInt64

		err := rows.Scan(&li.ID, &li.Period, &li.Name, &amount, &li.MyPercentage,
			&paid, &matchedTx, &recurringID, &pattern, &category)
		if err != nil {
			return nil, err
		}

		li.Amount, _ = decimal.NewFromString(amount)
		li.Paid = paid != 0
		li.MatchedTransactionID = matchedTx.String
		li.RecurringExpenseID = recurringID.Int64
		li.MatchPattern = pattern.String
		li.Category = category.String
		result = append(result, li)
	}
	return result, rows.Err()
}

// SaveLineItemMatch marks a line item paid and records the consumed
// transaction. Only the matcher and explicit user edits go through here.
func (s *Store) SaveLineItemMatch(lineItemID int64, transactionID string) error {
	_, err := s.db.Exec(`UPDATE budget_line_items
		SET paid = 1, matched_transaction_id = ?
		WHERE id = ?`, transactionID, lineItemID)
	return err
}

func nullable(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
