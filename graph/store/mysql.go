package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store[S].
//
// Use it when several chatbot instances share one conversation database.
// Connection pooling and upsert writes keep concurrent saves from
// different instances safe.
//
// Type parameter S must be JSON-serializable.
type MySQLStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore connects to the database named by dsn and prepares the
// schema. DSN format:
//
//	[username[:password]@][protocol[(address)]]/dbname[?param=value&...]
//
// for example "user:pass@tcp(localhost:3306)/chatbot". Never hardcode
// credentials; read the DSN from configuration.
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS threads (
			thread_id VARCHAR(255) PRIMARY KEY,
			state JSON NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create threads table: %w", err)
	}

	return &MySQLStore[S]{db: db}, nil
}

// Save persists the thread's snapshot, replacing any previous one.
func (m *MySQLStore[S]) Save(ctx context.Context, threadID string, state S) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	query := `
		INSERT INTO threads (thread_id, state)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE state = VALUES(state)
	`
	if _, err := m.db.ExecContext(ctx, query, threadID, string(stateJSON)); err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

// Load returns the thread's snapshot, or ErrNotFound.
func (m *MySQLStore[S]) Load(ctx context.Context, threadID string) (S, error) {
	var state S

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return state, fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	var stateJSON string
	err := m.db.QueryRowContext(ctx,
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
func (m *MySQLStore[S]) Delete(ctx context.Context, threadID string) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	if _, err := m.db.ExecContext(ctx, "DELETE FROM threads WHERE thread_id = ?", threadID); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive.
func (m *MySQLStore[S]) Ping(ctx context.Context) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	return m.db.PingContext(ctx)
}

// Close closes the connection pool. Calling Close twice is safe.
func (m *MySQLStore[S]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}
