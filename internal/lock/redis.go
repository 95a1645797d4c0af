package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lock:"

// releaseScript deletes the lock only when it still holds this locker's
// token, so an expired lock re-acquired by someone else is never released
// from under them.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared Redis, letting multiple
// service instances coordinate a single recalculation cycle.
type RedisLocker struct {
	client *redis.Client
	token  string
}

// NewRedisLocker creates a Locker on the given Redis client. Each locker
// instance carries its own token, so releases are scoped to the holder.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		token:  uuid.New().String(),
	}
}

// Acquire takes the named lock with SET NX and the given TTL.
func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, redisKeyPrefix+name, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// Release drops the named lock if this locker still holds it.
func (l *RedisLocker) Release(ctx context.Context, name string) error {
	if err := releaseScript.Run(ctx, l.client, []string{redisKeyPrefix + name}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}
