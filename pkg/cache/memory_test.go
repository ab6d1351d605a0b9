package cache

import (
	"testing"
	"time"

	"trustlens/pkg/insight"
)

func memoryAt(ttl time.Duration, staleTTL time.Duration, now *time.Time) *Memory {
	m := NewMemory(Options{TTL: ttl, StaleTTL: staleTTL})
	m.now = func() time.Time { return *now }
	return m
}

func TestMemoryFreshHit(t *testing.T) {
	now := time.Now()
	m := memoryAt(time.Minute, time.Hour, &now)

	m.Set("ip:1.2.3.4", insight.Insight{IP: "1.2.3.4", Country: "DE"})
	now = now.Add(30 * time.Second)

	e, ok := m.Get("ip:1.2.3.4")
	if !ok {
		t.Fatalf("expected fresh hit")
	}
	if e.Data.Country != "DE" {
		t.Fatalf("unexpected data: %+v", e.Data)
	}
	_, stale, ok := m.GetWithStale("ip:1.2.3.4")
	if !ok || stale {
		t.Fatalf("expected fresh entry, got stale=%v ok=%v", stale, ok)
	}
}

func TestMemoryStaleWindow(t *testing.T) {
	now := time.Now()
	m := memoryAt(time.Minute, time.Hour, &now)

	m.Set("ip:1.2.3.4", insight.Insight{IP: "1.2.3.4"})
	now = now.Add(10 * time.Minute)

	if _, ok := m.Get("ip:1.2.3.4"); ok {
		t.Fatalf("Get must not return a stale entry")
	}
	e, stale, ok := m.GetWithStale("ip:1.2.3.4")
	if !ok || !stale {
		t.Fatalf("expected stale entry, got stale=%v ok=%v", stale, ok)
	}
	if e.Data.IP != "1.2.3.4" {
		t.Fatalf("unexpected data: %+v", e.Data)
	}
}

func TestMemoryExpiryBehavesAsMiss(t *testing.T) {
	now := time.Now()
	m := memoryAt(time.Minute, time.Hour, &now)

	m.Set("ip:1.2.3.4", insight.Insight{IP: "1.2.3.4"})
	now = now.Add(2 * time.Hour)

	if _, _, ok := m.GetWithStale("ip:1.2.3.4"); ok {
		t.Fatalf("expected miss past the stale ttl")
	}
	if got := m.Len(); got != 0 {
		t.Fatalf("expected lazy removal, still %d entries", got)
	}
}

func TestMemoryBoundaryAges(t *testing.T) {
	now := time.Now()
	m := memoryAt(time.Minute, time.Hour, &now)
	m.Set("k", insight.Insight{IP: "k"})

	// Exactly at the ttl the entry is still fresh.
	now = now.Add(time.Minute)
	if _, stale, ok := m.GetWithStale("k"); !ok || stale {
		t.Fatalf("entry at ttl boundary should be fresh, stale=%v ok=%v", stale, ok)
	}
	// Exactly at the stale ttl the entry is still usable.
	now = now.Add(time.Hour - time.Minute)
	if _, stale, ok := m.GetWithStale("k"); !ok || !stale {
		t.Fatalf("entry at stale boundary should be stale-usable, stale=%v ok=%v", stale, ok)
	}
	now = now.Add(time.Nanosecond)
	if _, _, ok := m.GetWithStale("k"); ok {
		t.Fatalf("entry past stale boundary should be a miss")
	}
}

func TestMemorySetReplacesWholeEntry(t *testing.T) {
	now := time.Now()
	m := memoryAt(time.Minute, time.Hour, &now)

	m.Set("k", insight.Insight{IP: "k", Country: "US", City: "Dallas"})
	m.Set("k", insight.Insight{IP: "k", Country: "FR"})

	e, _ := m.Get("k")
	if e.Data.Country != "FR" || e.Data.City != "" {
		t.Fatalf("expected full replacement, got %+v", e.Data)
	}
}
