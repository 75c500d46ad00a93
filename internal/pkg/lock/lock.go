// Package lock serializes work on a shared resource (a specialist's
// calendar) across goroutines or, with Redis, across processes.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skincare/internal/pkg/apperror"
)

// ErrTimeout is returned when the lock could not be taken within the wait
// bound. It is a Conflict, so callers may retry.
var ErrTimeout = apperror.New(apperror.KindConflict, "resource is busy")

type Locker interface {
	// Acquire blocks until the key is free, wait elapses or ctx is done.
	// The returned release func is safe to call more than once.
	Acquire(ctx context.Context, key string, wait time.Duration) (release func(), err error)
}

func SpecialistKey(specialistID int64) string {
	return fmt.Sprintf("specialist:%d", specialistID)
}

// MemoryLocker is an in-process Locker backed by one buffered channel per key.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	ch := l.slot(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", ErrTimeout, key)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
