package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	srv, client := newTestRedis(t)
	locker := NewRedisLocker(client, RedisLockerOptions{Prefix: "sched:lock:", TTL: time.Second, RetryInterval: 5 * time.Millisecond})

	release, err := locker.Acquire(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.True(t, srv.Exists("sched:lock:teacher-1"))

	release()
	assert.False(t, srv.Exists("sched:lock:teacher-1"))
}

func TestRedisLockerContention(t *testing.T) {
	_, client := newTestRedis(t)
	locker := NewRedisLocker(client, RedisLockerOptions{TTL: time.Second, RetryInterval: 5 * time.Millisecond})

	release, err := locker.Acquire(context.Background(), "teacher-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "teacher-1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	again, err := locker.Acquire(context.Background(), "teacher-1")
	require.NoError(t, err)
	again()
}

func TestRedisLockerDoesNotReleaseForeignToken(t *testing.T) {
	srv, client := newTestRedis(t)
	locker := NewRedisLocker(client, RedisLockerOptions{TTL: time.Second})

	release, err := locker.Acquire(context.Background(), "teacher-1")
	require.NoError(t, err)

	// Simulate expiry followed by another instance taking the lock.
	srv.FastForward(2 * time.Second)
	require.NoError(t, srv.Set("lock:teacher-1", "someone-else"))

	release()
	value, err := srv.Get("lock:teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestChainReleasesInReverse(t *testing.T) {
	srv, client := newTestRedis(t)
	local := NewKeyedMutex()
	chain := Chain{local, NewRedisLocker(client, RedisLockerOptions{})}

	release, err := chain.Acquire(context.Background(), "teacher-7")
	require.NoError(t, err)
	assert.Equal(t, 1, local.size())
	assert.True(t, srv.Exists("lock:teacher-7"))

	release()
	assert.Equal(t, 0, local.size())
	assert.False(t, srv.Exists("lock:teacher-7"))
}
