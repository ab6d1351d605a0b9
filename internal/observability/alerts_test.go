package observability

import (
	"fmt"
	"testing"

	"trustlens/internal/config"
	"trustlens/internal/metrics"
)

func TestEvaluateAlertsLookupFailures(t *testing.T) {
	cfg := config.AlertThresholdsConfig{LookupFailures: 5}
	prev := metrics.Snapshot{LookupFailures: 10}
	curr := metrics.Snapshot{LookupFailures: 16}

	alerts := EvaluateAlerts(prev, curr, cfg)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Type != AlertLookupFailures || a.Value != 6 || a.Threshold != 5 {
		t.Fatalf("unexpected alert: %+v", a)
	}
	if a.ID == "" || a.Timestamp == 0 {
		t.Fatalf("alert must carry id and timestamp: %+v", a)
	}
}

func TestEvaluateAlertsProviderErrors(t *testing.T) {
	cfg := config.AlertThresholdsConfig{ProviderErrors: 3}
	prev := metrics.Snapshot{ProviderCalls: map[string]uint64{"ipinfo/error": 1}}
	curr := metrics.Snapshot{ProviderCalls: map[string]uint64{
		"ipinfo/error": 3,
		"radar/error":  2,
		"ipinfo/ok":    50,
	}}

	alerts := EvaluateAlerts(prev, curr, cfg)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != AlertProviderErrors || alerts[0].Value != 4 {
		t.Fatalf("unexpected alert: %+v", alerts[0])
	}
}

func TestEvaluateAlertsBelowThreshold(t *testing.T) {
	cfg := config.AlertThresholdsConfig{LookupFailures: 10, ProviderErrors: 10}
	prev := metrics.Snapshot{LookupFailures: 1}
	curr := metrics.Snapshot{LookupFailures: 5}

	if alerts := EvaluateAlerts(prev, curr, cfg); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func TestEvaluateAlertsZeroThresholdDisables(t *testing.T) {
	prev := metrics.Snapshot{}
	curr := metrics.Snapshot{LookupFailures: 1000}
	if alerts := EvaluateAlerts(prev, curr, config.AlertThresholdsConfig{}); len(alerts) != 0 {
		t.Fatalf("zero thresholds must disable evaluation, got %+v", alerts)
	}
}

func TestEvaluateAlertsCounterReset(t *testing.T) {
	cfg := config.AlertThresholdsConfig{LookupFailures: 1}
	prev := metrics.Snapshot{LookupFailures: 50}
	curr := metrics.Snapshot{LookupFailures: 2}

	// A restart resets the counters; the first interval after must not alert
	// on the apparent negative delta.
	if alerts := EvaluateAlerts(prev, curr, cfg); len(alerts) != 0 {
		t.Fatalf("counter reset must not alert, got %+v", alerts)
	}
}

func TestAlertStoreLimit(t *testing.T) {
	s := NewAlertStore(3)
	for i := 0; i < 5; i++ {
		s.Add(Alert{ID: fmt.Sprintf("a%d", i)})
	}
	alerts := s.List()
	if len(alerts) != 3 || alerts[0].ID != "a2" {
		t.Fatalf("expected newest 3 alerts, got %+v", alerts)
	}
}
