package locking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock cannot be acquired in time.
var ErrLockTimeout = errors.New("day lock: acquisition timed out")

const redisRetryDelay = 25 * time.Millisecond

// redisLock releases only the holder's own token so an expired lock
// reclaimed by another request is never deleted by the first holder.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`

// RedisDayLocker coordinates locks across service instances via SET NX.
type RedisDayLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDayLocker builds a locker. ttl bounds how long a crashed holder
// can block other writers.
func NewRedisDayLocker(client *redis.Client, ttl time.Duration) *RedisDayLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisDayLocker{client: client, ttl: ttl}
}

// Acquire polls SET NX until the lock is granted or ctx is done.
func (l *RedisDayLocker) Acquire(ctx context.Context, userID string, day time.Time) (func(), error) {
	key := lockKey(userID, day)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				_ = l.client.Eval(context.Background(), releaseScript, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(redisRetryDelay):
		}
	}
}
