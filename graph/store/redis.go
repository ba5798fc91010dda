package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis implementation of Store[S].
//
// Each thread snapshot is one JSON value under KeyPrefix + threadID. An
// optional TTL expires idle conversations, which is the cheapest way to
// bound memory when threads are created per visitor and abandoned.
//
// Type parameter S must be JSON-serializable.
type RedisStore[S any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	mu     sync.Mutex
	closed bool
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates the connection; empty for no auth.
	Password string

	// DB selects the logical database.
	DB int

	// KeyPrefix namespaces thread keys. Defaults to "chatbot:thread:".
	KeyPrefix string

	// TTL expires a thread this long after its last save. Zero keeps
	// threads forever.
	TTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore[S any](opts RedisOptions) (*RedisStore[S], error) {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "chatbot:thread:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore[S]{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL}, nil
}

func (r *RedisStore[S]) key(threadID string) string {
	return r.prefix + threadID
}

// Save persists the thread's snapshot, refreshing its TTL.
func (r *RedisStore[S]) Save(ctx context.Context, threadID string, state S) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := r.client.Set(ctx, r.key(threadID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save thread: %w", err)
	}
	return nil
}

// Load returns the thread's snapshot, or ErrNotFound.
func (r *RedisStore[S]) Load(ctx context.Context, threadID string) (S, error) {
	var state S

	data, err := r.client.Get(ctx, r.key(threadID)).Bytes()
	if err == redis.Nil {
		return state, ErrNotFound
	}
	if err != nil {
		return state, fmt.Errorf("failed to load thread: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

// Delete removes the thread's snapshot. Deleting an unknown thread is a
// no-op.
func (r *RedisStore[S]) Delete(ctx context.Context, threadID string) error {
	if err := r.client.Del(ctx, r.key(threadID)).Err(); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (r *RedisStore[S]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client. Calling Close twice is safe.
func (r *RedisStore[S]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}
