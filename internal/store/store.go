// Package store provides SQLite-backed persistence for accounts, transactions,
// categorization rules, budget line items and sync runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/finsync/internal/logging"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store wraps the application database.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens or creates the database at the given path and applies the schema.
func Open(dbPath string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating database dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// table-lock errors under the write-heavy sync pass.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.WithField("path", dbPath).Debug("Database opened")
	return &Store{db: db, log: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
