package locking

import (
	"context"
	"sync"
	"time"
)

// MemoryDayLocker serializes writers within a single process. It backs
// single-node deployments and tests; multi-instance deployments use the
// Redis locker.
type MemoryDayLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryDayLocker builds an in-process locker.
func NewMemoryDayLocker() *MemoryDayLocker {
	return &MemoryDayLocker{locks: make(map[string]*sync.Mutex)}
}

// Acquire takes the per-key mutex. Lock entries are never evicted; the key
// space is bounded by active (user, day) pairs and entries are a mutex each.
func (l *MemoryDayLocker) Acquire(ctx context.Context, userID string, day time.Time) (func(), error) {
	key := lockKey(userID, day)

	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &sync.Mutex{}
		l.locks[key] = entry
	}
	l.mu.Unlock()

	entry.Lock()
	return entry.Unlock, nil
}
