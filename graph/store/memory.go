package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is an in-memory implementation of Store[S].
//
// Snapshots are serialized to JSON on Save and deserialized on Load, the
// same as the database-backed stores, so state shared through a MemStore
// is isolated from later mutation by the caller and tests exercise the
// same serialization path production uses.
//
// Data is lost when the process exits. Use SQLiteStore, MySQLStore or
// RedisStore when conversations must survive restarts.
type MemStore[S any] struct {
	mu      sync.RWMutex
	threads map[string][]byte
	closed  bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{threads: make(map[string][]byte)}
}

// Save persists the thread's snapshot.
func (m *MemStore[S]) Save(_ context.Context, threadID string, state S) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state for thread %q: %w", threadID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	m.threads[threadID] = data
	return nil
}

// Load returns the thread's snapshot, or ErrNotFound.
func (m *MemStore[S]) Load(_ context.Context, threadID string) (S, error) {
	var state S

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return state, fmt.Errorf("store is closed")
	}

	data, ok := m.threads[threadID]
	if !ok {
		return state, ErrNotFound
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("unmarshal state for thread %q: %w", threadID, err)
	}
	return state, nil
}

// Delete removes the thread's snapshot.
func (m *MemStore[S]) Delete(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	delete(m.threads, threadID)
	return nil
}

// Ping implements Store. Memory is always reachable.
func (m *MemStore[S]) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

// Close marks the store closed and drops its contents.
func (m *MemStore[S]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.threads = nil
	return nil
}
