// Package locking serializes appointment writes that contend on the same
// (user, calendar date) pair. The quota rules read the same-day set and
// then write; without the lock two concurrent requests can both pass
// validation against the same snapshot and commit a combined state that
// violates the daily limits.
package locking

import (
	"context"
	"fmt"
	"time"
)

// DayLocker grants exclusive access to one user's calendar date.
type DayLocker interface {
	// Acquire blocks until the (userID, day) lock is held, the context is
	// done, or the attempt budget runs out. The returned release function
	// must be called exactly once.
	Acquire(ctx context.Context, userID string, day time.Time) (release func(), err error)
}

func lockKey(userID string, day time.Time) string {
	return fmt.Sprintf("schedlock:%s:%s", userID, day.Format("2006-01-02"))
}
