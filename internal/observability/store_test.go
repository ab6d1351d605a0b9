package observability

import (
	"fmt"
	"testing"
)

func TestStoreKeepsInsertionOrder(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 3; i++ {
		s.Add(Trace{ID: fmt.Sprintf("t%d", i), Path: "/api/v1/ip/8.8.8.8"})
	}
	traces := s.List()
	if len(traces) != 3 {
		t.Fatalf("expected 3 traces, got %d", len(traces))
	}
	for i, tr := range traces {
		if tr.ID != fmt.Sprintf("t%d", i) {
			t.Fatalf("order broken at %d: %+v", i, traces)
		}
	}
}

func TestStoreDropsOldestPastLimit(t *testing.T) {
	s := NewStore(5)
	for i := 0; i < 8; i++ {
		s.Add(Trace{ID: fmt.Sprintf("t%d", i)})
	}
	traces := s.List()
	if len(traces) != 5 {
		t.Fatalf("expected limit to hold, got %d", len(traces))
	}
	if traces[0].ID != "t3" || traces[4].ID != "t7" {
		t.Fatalf("expected the newest 5, got %+v", traces)
	}
}

func TestStoreListIsACopy(t *testing.T) {
	s := NewStore(10)
	s.Add(Trace{ID: "a"})
	list := s.List()
	list[0].ID = "mutated"
	if s.List()[0].ID != "a" {
		t.Fatalf("list must not alias internal storage")
	}
}

func TestStoreZeroLimitGetsDefault(t *testing.T) {
	s := NewStore(0)
	if s.Limit() != 1000 {
		t.Fatalf("expected default limit, got %d", s.Limit())
	}
}
