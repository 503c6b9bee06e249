// Package sqlitestore keeps the session slot in a single-table SQLite database.
package sqlitestore

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-leads-client/session"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS session_values (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

var _ session.Store = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.Wrap(err, "sqlitestore.Open MkdirAll")
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "sqlitestore.Open sql.Open")
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlitestore.Open schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM session_values WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "SQLiteStore.Get")
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO session_values (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return errors.Wrap(err, "SQLiteStore.Set")
}

func (s *SQLiteStore) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "SQLiteStore.Delete Begin")
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM session_values WHERE key = ?`, k); err != nil {
			return errors.Wrap(err, "SQLiteStore.Delete Exec")
		}
	}
	return errors.Wrap(tx.Commit(), "SQLiteStore.Delete Commit")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
