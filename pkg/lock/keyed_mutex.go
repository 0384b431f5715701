package lock

import (
	"context"
	"sync"
)

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex is an in-process Locker holding one mutex per key. Entries are
// reference counted and dropped once no goroutine holds or waits on them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

// NewKeyedMutex constructs an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

// Acquire implements Locker.
func (m *KeyedMutex) Acquire(ctx context.Context, keys ...string) (func(), error) {
	if ctx.Err() != nil {
		return nil, ctxError(ctx)
	}
	keys = normalizeKeys(keys)
	held := make([]string, 0, len(keys))
	releaseHeld := func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.unlock(held[i])
		}
	}
	for _, key := range keys {
		if err := m.lock(ctx, key); err != nil {
			releaseHeld()
			return nil, err
		}
		held = append(held, key)
	}
	var once sync.Once
	return func() { once.Do(releaseHeld) }, nil
}

func (m *KeyedMutex) lock(ctx context.Context, key string) error {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if !ok {
		entry = &keyedEntry{sem: make(chan struct{}, 1)}
		m.entries[key] = entry
	}
	entry.refs++
	m.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.release(key, entry)
		return ctxError(ctx)
	}
}

func (m *KeyedMutex) unlock(key string) {
	m.mu.Lock()
	entry := m.entries[key]
	m.mu.Unlock()
	if entry == nil {
		return
	}
	<-entry.sem
	m.release(key, entry)
}

func (m *KeyedMutex) release(key string, entry *keyedEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(m.entries, key)
	}
}

// size reports tracked keys; used by tests to assert entries are reclaimed.
func (m *KeyedMutex) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
