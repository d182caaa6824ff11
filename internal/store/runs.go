package store

import (
	"database/sql"
	"time"

	"fjacquet/finsync/internal/models"
)

// CreateSyncRun records a new run in the running state and returns its id.
func (s *Store) CreateSyncRun(startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO sync_runs (started_at, status)
		VALUES (?, ?)`,
		startedAt.UTC().Format(time.RFC3339), string(models.RunStatusRunning))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteSyncRun moves a run to the completed state. errText carries the
// accumulated per-account errors and stays empty for a clean run.
func (s *Store) CompleteSyncRun(id int64, accounts, transactions int, errText string) error {
	return s.finishRun(id, models.RunStatusCompleted, accounts, transactions, errText)
}

// FailSyncRun moves a run to the failed state with the fatal error.
func (s *Store) FailSyncRun(id int64, errText string) error {
	return s.finishRun(id, models.RunStatusFailed, 0, 0, errText)
}

func (s *Store) finishRun(id int64, status models.RunStatus, accounts, transactions int, errText string) error {
	_, err := s.db.Exec(`UPDATE sync_runs
		SET completed_at = ?, status = ?, error = ?, accounts_synced = ?, transactions_synced = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), string(status),
		nullable(errText), accounts, transactions, id)
	return err
}

// LatestSyncRun returns the most recently started run. The boolean is false
// when no run has ever been recorded.
func (s *Store) LatestSyncRun() (models.SyncRun, bool, error) {
	row := s.db.QueryRow(`SELECT id, started_at, completed_at, status, error, accounts_synced, transactions_synced
		FROM sync_runs ORDER BY id DESC LIMIT 1`)

	var r models.SyncRun
	var started string
	var completed, errText sql.NullString
	var status string

	err := row.Scan(&r.ID, &started, &completed, &status, &errText,
		&r.AccountsSynced, &r.TransactionsSynced)
	if err == sql.ErrNoRows {
		return models.SyncRun{}, false, nil
	}
	if err != nil {
		return models.SyncRun{}, false, err
	}

	r.StartedAt, _ = time.Parse(time.RFC3339, started)
	if completed.Valid && completed.String != "" {
		r.CompletedAt, _ = time.Parse(time.RFC3339, completed.String)
	}
	r.Status = models.RunStatus(status)
	r.Error = errText.String
	return r, true, nil
}
