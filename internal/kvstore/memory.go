package kvstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	count     int64
	expiresAt time.Time
}

// sweepInterval is the minimum time between full scans for expired entries.
const sweepInterval = time.Minute

// MemoryStore keeps everything in process. It implements Store and Counter.
// Expired entries are dropped on read and by a periodic sweep on write.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for expiry.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
	return m
}

func (m *MemoryStore) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// sweep drops every expired entry at most once per sweepInterval.
// Callers hold m.mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now
	for k, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// Len reports the number of entries held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok || e.value == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()

	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()

	e, ok := m.live(key)
	if !ok {
		e = memoryEntry{}
		if window > 0 {
			e.expiresAt = m.now().Add(window)
		}
	}
	e.count++
	m.entries[key] = e
	return e.count, nil
}

// Ping always succeeds; the store lives in process.
func (m *MemoryStore) Ping(context.Context) error { return nil }
