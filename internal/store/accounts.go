package store

import (
	"database/sql"
	"time"

	"fjacquet/finsync/internal/models"

	"github.com/shopspring/decimal"
)

// UpsertAccount inserts or fully replaces an account record keyed by id.
func (s *Store) UpsertAccount(a models.Account) error {
	lastSynced := ""
	if !a.LastSynced.IsZero() {
		lastSynced = a.LastSynced.UTC().Format(time.RFC3339)
	}
	hidden := 0
	if a.Hidden {
		hidden = 1
	}

	_, err := s.db.Exec(`INSERT OR REPLACE INTO accounts
		(id, name, kind, balance, currency, institution, last_synced, hidden)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Kind), a.Balance.Amount.String(), a.Balance.Currency,
		a.Institution, lastSynced, hidden,
	)
	return err
}

// GetAccount looks up a single account by id.
func (s *Store) GetAccount(id string) (models.Account, bool, error) {
	row := s.db.QueryRow(`SELECT id, name, kind, balance, currency, institution, last_synced, hidden
		FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return models.Account{}, false, nil
	}
	if err != nil {
		return models.Account{}, false, err
	}
	return a, true, nil
}

// ListAccounts returns all accounts of the given kind, or all accounts when
// kind is empty, ordered by id for reproducible iteration.
func (s *Store) ListAccounts(kind models.AccountKind) ([]models.Account, error) {
	query := `SELECT id, name, kind, balance, currency, institution, last_synced, hidden
		FROM accounts`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	var kind, balance, currency string
	var institution, lastSynced sql.NullString
	var hidden int

	if err := row.Scan(&a.ID, &a.Name, &kind, &balance, &currency, &institution, &lastSynced, &hidden); err != nil {
		return models.Account{}, err
	}

	a.Kind = models.AccountKind(kind)
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		amount = decimal.Zero
	}
	a.Balance = models.NewMoney(amount, currency)
	if institution.Valid {
		a.Institution = institution.String
	}
	if lastSynced.Valid && lastSynced.String != "" {
		a.LastSynced, _ = time.Parse(time.RFC3339, lastSynced.String)
	}
	a.Hidden = hidden != 0
	return a, nil
}
