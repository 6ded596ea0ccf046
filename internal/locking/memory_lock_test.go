package locking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDayLocker_SerializesSameKey(t *testing.T) {
	locker := NewMemoryDayLocker()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "user-1", day)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen, "critical section must admit one holder at a time")
}

func TestMemoryDayLocker_DistinctKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryDayLocker()
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	releaseA, err := locker.Acquire(context.Background(), "user-1", day)
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(context.Background(), "user-2", day)
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different user should not contend on the same lock")
	}
}

func TestLockKey_GroupsByCalendarDate(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, lockKey("u", day), lockKey("u", morning))
	assert.NotEqual(t, lockKey("u", day), lockKey("u", day.AddDate(0, 0, 1)))
}
