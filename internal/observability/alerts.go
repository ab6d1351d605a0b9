package observability

import (
	"context"
	"sync"
	"time"

	"trustlens/internal/config"
	"trustlens/internal/metrics"
)

type AlertType string

const (
	AlertLookupFailures AlertType = "lookup_failures"
	AlertProviderErrors AlertType = "provider_errors"
)

type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Value     uint64    `json:"value"`
	Threshold uint64    `json:"threshold"`
	Timestamp int64     `json:"timestamp"`
}

type AlertStore struct {
	mu     sync.Mutex
	limit  int
	alerts []Alert
}

func NewAlertStore(limit int) *AlertStore {
	if limit <= 0 {
		limit = 200
	}
	return &AlertStore{
		limit:  limit,
		alerts: make([]Alert, 0, limit),
	}
}

func (s *AlertStore) Add(alert Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > s.limit {
		s.alerts = append([]Alert{}, s.alerts[len(s.alerts)-s.limit:]...)
	}
}

func (s *AlertStore) List() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alert, 0, len(s.alerts))
	out = append(out, s.alerts...)
	return out
}

func (s *AlertStore) Limit() int {
	return s.limit
}

// EvaluateAlerts compares two metric snapshots against the configured
// per-interval thresholds. A zero threshold disables its rule.
func EvaluateAlerts(prev metrics.Snapshot, curr metrics.Snapshot, cfg config.AlertThresholdsConfig) []Alert {
	out := make([]Alert, 0, 2)
	now := time.Now().Unix()
	if cfg.LookupFailures > 0 {
		delta := counterDelta(prev.LookupFailures, curr.LookupFailures)
		if delta >= cfg.LookupFailures {
			out = append(out, Alert{
				ID:        newAlertID(),
				Type:      AlertLookupFailures,
				Message:   "lookup failures threshold exceeded",
				Value:     delta,
				Threshold: cfg.LookupFailures,
				Timestamp: now,
			})
		}
	}
	if cfg.ProviderErrors > 0 {
		delta := counterDelta(prev.ProviderErrors(), curr.ProviderErrors())
		if delta >= cfg.ProviderErrors {
			out = append(out, Alert{
				ID:        newAlertID(),
				Type:      AlertProviderErrors,
				Message:   "provider errors threshold exceeded",
				Value:     delta,
				Threshold: cfg.ProviderErrors,
				Timestamp: now,
			})
		}
	}
	return out
}

// StartEvaluator samples the metrics on the configured interval and records
// any threshold breaches into the alert store.
func StartEvaluator(ctx context.Context, m *metrics.Metrics, store *AlertStore, cfg config.AlertThresholdsConfig) {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		prev := m.Snapshot()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				curr := m.Snapshot()
				for _, alert := range EvaluateAlerts(prev, curr, cfg) {
					store.Add(alert)
				}
				prev = curr
			}
		}
	}()
}

func counterDelta(prev uint64, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}

func newAlertID() string {
	return time.Now().Format("20060102150405.000000000")
}
