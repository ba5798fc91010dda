package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store[S].
//
// Thread snapshots live in a single-file database, which makes it the
// default persistent backend: zero setup, survives restarts, and easy to
// inspect with the sqlite3 shell. WAL mode keeps reads from blocking the
// single writer.
//
// Type parameter S must be JSON-serializable.
type SQLiteStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore opens the database at path, creating the file and schema
// when missing. Use ":memory:" for an ephemeral database in tests.
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// The driver supports one writer at a time; a single connection
	// avoids SQLITE_BUSY when saves race.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS threads (
			thread_id  TEXT PRIMARY KEY,
			state      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create threads table: %w", err)
	}

	return &SQLiteStore[S]{db: db, path: path}, nil
}

// Save persists the thread's snapshot, replacing any previous one.
func (s *SQLiteStore[S]) Save(ctx context.Context, threadID string, state S) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	query := `
		INSERT INTO threads (thread_id, state)
		VALUES (?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			state = excluded.state,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, threadID, string(stateJSON)); err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

// Load returns the thread's snapshot, or ErrNotFound.
func (s *SQLiteStore[S]) Load(ctx context.Context, threadID string) (S, error) {
	var state S

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return state, fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	var stateJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT state FROM threads WHERE thread_id = ?", threadID,
	).Scan(&stateJSON)
	if err == sql.ErrNoRows {
		return state, ErrNotFound
	}
	if err != nil {
		return state, fmt.Errorf("failed to load thread: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return state, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

// Delete removes the thread's snapshot. Deleting an unknown thread is a
// no-op.
func (s *SQLiteStore[S]) Delete(ctx context.Context, threadID string) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM threads WHERE thread_id = ?", threadID); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore[S]) Ping(ctx context.Context) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	return s.db.PingContext(ctx)
}

// Close closes the database connection. Calling Close twice is safe.
func (s *SQLiteStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the database file path, for logging.
func (s *SQLiteStore[S]) Path() string {
	return s.path
}
