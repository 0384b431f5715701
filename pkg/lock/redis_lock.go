package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token so an
// expired lock re-acquired by another instance is never removed.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a distributed Locker built on SET NX PX. It serialises
// writers across scheduler instances sharing one Redis.
type RedisLocker struct {
	client        redis.UniversalClient
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
}

// RedisLockerOptions tunes RedisLocker.
type RedisLockerOptions struct {
	Prefix        string
	TTL           time.Duration
	RetryInterval time.Duration
}

// NewRedisLocker constructs a RedisLocker.
func NewRedisLocker(client redis.UniversalClient, opts RedisLockerOptions) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = "lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	return &RedisLocker{client: client, prefix: opts.Prefix, ttl: opts.TTL, retryInterval: opts.RetryInterval}
}

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	releaseHeld := func() {
		// Release must work even when the request context is already done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = releaseScript.Run(releaseCtx, l.client, []string{held[i]}, token).Err()
		}
	}
	for _, key := range keys {
		redisKey := l.prefix + key
		if err := l.lock(ctx, redisKey, token); err != nil {
			releaseHeld()
			return nil, err
		}
		held = append(held, redisKey)
	}
	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

func (l *RedisLocker) lock(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctxError(ctx)
			}
			return fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctxError(ctx)
		case <-ticker.C:
		}
	}
}
