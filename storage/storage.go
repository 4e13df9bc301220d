// Package storage keeps the client-side state that survives reloads: the
// last-applied settings snapshot and the chosen color-scheme identity.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"adminstyler/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	option_id  TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Store is a SQLite-backed key/value store. Writes are serialized through a
// single connection, which is all SQLite safely supports.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, "adminstyler.db")

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveOption upserts one option value.
func (s *Store) SaveOption(optionID, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (option_id, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(option_id) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		optionID, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save option %s: %w", optionID, err)
	}
	return nil
}

// Snapshot loads the full stored settings state.
func (s *Store) Snapshot() (model.Snapshot, error) {
	snap := model.Snapshot{Options: make(map[string]string)}

	rows, err := s.db.Query(`SELECT option_id, value, updated_at FROM settings`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, value string
		var at time.Time
		if err := rows.Scan(&id, &value, &at); err != nil {
			return snap, fmt.Errorf("scan setting: %w", err)
		}
		snap.Options[id] = value
		if at.After(snap.SavedAt) {
			snap.SavedAt = at
		}
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load snapshot: %w", err)
	}

	scheme, err := s.Scheme()
	if err != nil {
		return snap, err
	}
	snap.Scheme = scheme
	return snap, nil
}

// SaveScheme stores the chosen color-scheme identity.
func (s *Store) SaveScheme(name string) error {
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('color_scheme', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		name,
	)
	if err != nil {
		return fmt.Errorf("save scheme: %w", err)
	}
	return nil
}

// Scheme returns the stored color-scheme identity, empty when unset.
func (s *Store) Scheme() (string, error) {
	var name string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'color_scheme'`).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load scheme: %w", err)
	}
	return name, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
