package chat

import "sync"

// threadLocks serializes turns per thread. Concurrent requests for the
// same thread queue up; requests for different threads run in parallel.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	mu   sync.Mutex
	refs int
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*threadLock)}
}

// acquire blocks until the caller holds the lock for threadID and returns
// the release function. The per-thread entry is dropped once the last
// waiter releases, so idle threads cost nothing.
func (t *threadLocks) acquire(threadID string) func() {
	t.mu.Lock()
	l, ok := t.locks[threadID]
	if !ok {
		l = &threadLock{}
		t.locks[threadID] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, threadID)
		}
		t.mu.Unlock()
	}
}
