package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
	_ "modernc.org/sqlite"
)

const createKVTable = `CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteSlot stores the value as one row of a kv table.
type SQLiteSlot struct {
	db  *sql.DB
	key string
}

// OpenSQLiteSlot opens (or creates) the database at dsn and ensures the kv
// table exists. dsn may be ":memory:".
func OpenSQLiteSlot(dsn, key string) (*SQLiteSlot, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, errors.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(createKVTable); err != nil {
		_ = db.Close()
		return nil, errors.Errorf("create kv table: %w", err)
	}
	return &SQLiteSlot{db: db, key: key}, nil
}

// Read returns the stored value, or ErrSlotEmpty when the key has no row.
func (s *SQLiteSlot) Read() ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, errors.Errorf("read slot %q: %w", s.key, err)
	}
	return []byte(value), nil
}

// Write upserts the value for the slot key.
func (s *SQLiteSlot) Write(data []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, s.key, string(data))
	if err != nil {
		return errors.Errorf("write slot %q: %w", s.key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteSlot) Close() error {
	return s.db.Close()
}
