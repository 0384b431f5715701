// Package lock serialises writers that share a key, typically a teacher id.
package lock

import (
	"context"
	"errors"
	"sort"
)

// ErrLockTimeout is returned when a lock cannot be acquired before the context ends.
var ErrLockTimeout = errors.New("lock: acquisition timed out")

// Locker grants exclusive ownership of a set of keys. The returned release
// function must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (release func(), err error)
}

// Chain acquires every locker in order, releasing in reverse. It lets a local
// mutex absorb in-process contention before touching a distributed lock.
type Chain []Locker

// Acquire implements Locker.
func (c Chain) Acquire(ctx context.Context, keys ...string) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, l := range c {
		release, err := l.Acquire(ctx, keys...)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

// normalizeKeys sorts and de-duplicates keys so multi-key acquisition always
// happens in the same order.
func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrLockTimeout
	}
	return ctx.Err()
}
