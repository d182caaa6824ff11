package store

import (
	"database/sql"
	"time"

	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows ListTransactions. Zero values mean "no constraint".
type TransactionFilter struct {
	DateFrom     string // YYYY-MM-DD inclusive
	DateTo       string // YYYY-MM-DD exclusive
	AccountKind  models.AccountKind
	OnlyExpenses bool // amount < 0
	Limit        int
}

// ClearTransactions deletes every transaction row and commits the deletion.
// The sync pass relies on this commit happening before any new row is written,
// so a later failure cannot leave the table half-deleted.
func (s *Store) ClearTransactions() error {
	_, err := s.db.Exec(`DELETE FROM transactions`)
	return err
}

// UpsertTransaction inserts or fully replaces a transaction keyed by id.
// Re-delivery of the same upstream identifier overwrites the prior row.
func (s *Store) UpsertTransaction(t models.Transaction) error {
	excluded := 0
	if t.Excluded {
		excluded = 1
	}
	category := sql.NullString{String: t.Category, Valid: t.Category != ""}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO transactions
		(id, account_id, date, description, amount, currency, category, excluded, account_kind, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Day(), t.Description, t.Amount.Amount.String(),
		t.Amount.Currency, category, excluded, string(t.AccountKind), t.RawJSON,
	)
	return err
}

// UpdateTransactionCategory sets the category and excluded flag after a user
// correction. The rest of the row is untouched.
func (s *Store) UpdateTransactionCategory(id, category string, excluded bool) error {
	ex := 0
	if excluded {
		ex = 1
	}
	_, err := s.db.Exec(`UPDATE transactions SET category = ?, excluded = ? WHERE id = ?`,
		category, ex, id)
	return err
}

// ListTransactions returns transactions matching the filter, ordered by
// (date, id) ascending. The ordering is part of the contract: the expense
// matcher assigns the first qualifying candidate, so a stable order keeps
// matches reproducible across runs on the same data.
func (s *Store) ListTransactions(f TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT id, account_id, date, description, amount, currency, category, excluded, account_kind, raw_json
		FROM transactions WHERE 1=1`
	args := []interface{}{}

	if f.DateFrom != "" {
		query += ` AND date >= ?`
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		query += ` AND date < ?`
		args = append(args, f.DateTo)
	}
	if f.AccountKind != "" {
		query += ` AND account_kind = ?`
		args = append(args, string(f.AccountKind))
	}
	if f.OnlyExpenses {
		query += ` AND CAST(amount AS REAL) < 0`
	}
	query += ` ORDER BY date, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var date, amount, currency, kind string
		var category, rawJSON sql.NullString
		var excluded int

		err := rows.Scan(&t.ID, &t.AccountID, &date, &t.Description, &amount,
			&currency, &category, &excluded, &kind, &rawJSON)
		if err != nil {
			return nil, err
		}

		t.Date, _ = time.Parse("2006-01-02", date)
		dec, err := decimal.NewFromString(amount)
		if err != nil {
			dec = decimal.Zero
		}
		t.Amount = models.NewMoney(dec, currency)
		if category.Valid {
			t.Category = category.String
		}
		t.Excluded = excluded != 0
		t.AccountKind = models.AccountKind(kind)
		if rawJSON.Valid {
			t.RawJSON = rawJSON.String
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// CountTransactions returns the number of persisted transactions.
func (s *Store) CountTransactions() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count)
	return count, err
}
