package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skincare/internal/pkg/apperror"
)

func lockers(t *testing.T) map[string]Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Locker{
		"memory": NewMemoryLocker(),
		"redis":  NewRedisLocker(client, "test:", WithRetryDelay(5*time.Millisecond)),
	}
}

func TestLocker_TimeoutIsConflict(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			release, err := l.Acquire(ctx, SpecialistKey(1), time.Second)
			require.NoError(t, err)
			defer release()

			_, err = l.Acquire(ctx, SpecialistKey(1), 30*time.Millisecond)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTimeout)
			assert.True(t, apperror.IsRetryable(err))
		})
	}
}

func TestLocker_ReleaseAllowsNextHolder(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			release, err := l.Acquire(ctx, "k", time.Second)
			require.NoError(t, err)
			release()
			release()

			release2, err := l.Acquire(ctx, "k", 100*time.Millisecond)
			require.NoError(t, err)
			release2()
		})
	}
}

func TestLocker_IndependentKeys(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r1, err := l.Acquire(ctx, SpecialistKey(1), time.Second)
			require.NoError(t, err)
			defer r1()

			r2, err := l.Acquire(ctx, SpecialistKey(2), 50*time.Millisecond)
			require.NoError(t, err)
			r2()
		})
	}
}

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	l := NewMemoryLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "shared", 5*time.Second)
			if err != nil {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	l := NewMemoryLocker()
	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
