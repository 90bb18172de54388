// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     store
// Description: SQLite-backed key-value store with per-session scoping
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements KVStore using SQLite. One database file can hold
// the state of many sessions; each SQLiteStore value is scoped to a single
// session id.
type SQLiteStore struct {
	db      *sql.DB
	session string
	mu      sync.RWMutex

	// ownsDB marks stores that opened the database themselves
	ownsDB bool
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path      string
	SessionID string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig(sessionID string) SQLiteConfig {
	return SQLiteConfig{
		Path:      "./data/sessions.db",
		SessionID: sessionID,
	}
}

// NewSQLiteStore opens (or creates) the database and prepares the schema
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.SessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db, session: cfg.SessionID, ownsDB: true}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// NewSQLiteStoreWithDB scopes a store to a session over an already open
// database. Close on the returned store is a no-op for the database.
func NewSQLiteStoreWithDB(db *sql.DB, sessionID string) (*SQLiteStore, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	s := &SQLiteStore{db: db, session: sessionID}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_state (
		session_id TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_session_state_session
		ON session_state(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Get returns the stored value for key within this session
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_state WHERE session_id = ? AND key = ?`,
		s.session, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores or replaces the value for key within this session
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id, key)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.session, key, value)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes the key within this session
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_state WHERE session_id = ? AND key = ?`,
		s.session, key)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database when this store opened it
func (s *SQLiteStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
