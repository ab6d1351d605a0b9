package cache

import (
	"sync"
	"time"

	"trustlens/pkg/insight"
)

// Memory is the process-local backend: a plain map guarded by a RWMutex.
// Lost on restart, unbounded except for lazy removal of entries read past
// their stale TTL. The expected key space (IPs actually seen by one
// process) keeps it small in practice.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	opts    Options

	// now is swappable in tests.
	now func() time.Time
}

func NewMemory(opts Options) *Memory {
	return &Memory{
		entries: make(map[string]Entry),
		opts:    opts,
		now:     time.Now,
	}
}

func (m *Memory) Get(key string) (Entry, bool) {
	e, stale, ok := m.GetWithStale(key)
	if !ok || stale {
		return Entry{}, false
	}
	return e, true
}

func (m *Memory) GetWithStale(key string) (Entry, bool, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return Entry{}, false, false
	}
	stale, usable := m.opts.age(e, m.now())
	if !usable {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have raced the delete.
		if cur, still := m.entries[key]; still && cur.StoredAt.Equal(e.StoredAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false, false
	}
	return e, stale, true
}

func (m *Memory) Set(key string, value insight.Insight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = Entry{Data: value, StoredAt: m.now()}
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Backend() string { return "memory" }

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
