// Package store persists conversation state between chat turns.
//
// A Store keeps exactly one snapshot per thread: the state of the
// conversation after its most recent completed turn. Loading a thread
// that was never saved yields ErrNotFound, which callers treat as a
// fresh conversation.
//
// Implementations:
//   - MemStore: in-memory map, for tests and ephemeral deployments
//   - SQLiteStore: single-file embedded database
//   - MySQLStore: shared relational database
//   - RedisStore: key-value store with optional snapshot expiry
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the thread has no saved state.
var ErrNotFound = errors.New("thread not found")

// Store persists the latest workflow state per conversation thread.
//
// Semantics shared by every implementation:
//   - Save atomically replaces the thread's snapshot
//   - Load returns ErrNotFound for threads never saved or since deleted
//   - Delete of an unknown thread is a no-op
//
// Implementations must be safe for concurrent use. Callers serialize
// turns within one thread, but distinct threads save and load
// concurrently.
//
// Type parameter S is the state type to persist. Database-backed stores
// serialize S as JSON, so it must round-trip through encoding/json.
type Store[S any] interface {
	// Save persists state as the thread's latest snapshot, replacing
	// any previous snapshot.
	Save(ctx context.Context, threadID string, state S) error

	// Load returns the thread's latest snapshot.
	Load(ctx context.Context, threadID string) (S, error)

	// Delete removes the thread's snapshot so the next Load reports
	// ErrNotFound.
	Delete(ctx context.Context, threadID string) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources. The store must not be used
	// afterwards; a second Close is a no-op.
	Close() error
}
