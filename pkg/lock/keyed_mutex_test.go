package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerialisesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(context.Background(), "teacher-1")
			if !assert.NoError(t, err) {
				return
			}
			now := atomic.AddInt32(&inside, 1)
			for {
				prev := atomic.LoadInt32(&maxInside)
				if now <= prev || atomic.CompareAndSwapInt32(&maxInside, prev, now) {
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
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := NewKeyedMutex()
	release, err := m.Acquire(context.Background(), "teacher-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	other, err := m.Acquire(ctx, "teacher-2")
	require.NoError(t, err)
	other()
}

func TestKeyedMutexTimeout(t *testing.T) {
	m := NewKeyedMutex()
	release, err := m.Acquire(context.Background(), "teacher-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Acquire(ctx, "teacher-1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutexMultiKeyReleasesOnFailure(t *testing.T) {
	m := NewKeyedMutex()
	releaseB, err := m.Acquire(context.Background(), "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Acquire(ctx, "b", "a", "a")
	require.Error(t, err)

	// "a" must have been released after the failed attempt on "b".
	releaseA, err := m.Acquire(context.Background(), "a")
	require.NoError(t, err)
	releaseA()
	releaseB()
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutexReleaseIsIdempotent(t *testing.T) {
	m := NewKeyedMutex()
	release, err := m.Acquire(context.Background(), "k")
	require.NoError(t, err)
	release()
	release()
	assert.Equal(t, 0, m.size())
}

func TestNormalizeKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, normalizeKeys([]string{"b", "", "a", "b"}))
}
