// Package cache implements the insight cache: TTL'd entries with a second
// "stale but usable" window, behind a backend-agnostic store interface.
// Entries are only ever replaced whole; expiry is lazy, there is no sweeper.
package cache

import (
	"time"

	"trustlens/pkg/insight"
)

// Entry is one stored insight plus the moment it was written. Freshness is
// derived at read time from the store's TTLs, never persisted.
type Entry struct {
	Data     insight.Insight `json:"data"`
	StoredAt time.Time       `json:"stored_at"`
}

// Options fixes the freshness windows at construction. TTL bounds the fresh
// window; StaleTTL bounds the usable window. Past StaleTTL an entry behaves
// exactly like a miss.
type Options struct {
	TTL      time.Duration
	StaleTTL time.Duration
}

// Store is the cache contract shared by all backends. Swapping backends is
// a configuration decision and invisible to callers.
type Store interface {
	// Get returns the entry only while it is fresh.
	Get(key string) (Entry, bool)
	// GetWithStale returns the entry while it is usable, with stale=true
	// once the fresh window has passed. It never returns an entry older
	// than the stale TTL.
	GetWithStale(key string) (entry Entry, stale bool, ok bool)
	// Set stores value under key, replacing any previous entry whole.
	Set(key string, value insight.Insight)
	// Len reports the number of entries currently held, expired or not.
	Len() int
	// Backend names the implementation for health reporting.
	Backend() string
	Close() error
}

// age classifies an entry against the configured windows.
func (o Options) age(e Entry, now time.Time) (stale bool, usable bool) {
	elapsed := now.Sub(e.StoredAt)
	if elapsed <= o.TTL {
		return false, true
	}
	if elapsed <= o.StaleTTL {
		return true, true
	}
	return false, false
}
