// Package metrics exposes the lookup pipeline's counters both as Prometheus
// collectors and as an atomic snapshot for alert evaluation and remote-write
// export.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"trustlens/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	CacheHitsTotal            prometheus.Counter
	CacheStaleServesTotal     prometheus.Counter
	CacheMissesTotal          prometheus.Counter
	LookupFailuresTotal       prometheus.Counter
	RevalidationsTotal        prometheus.Counter
	RevalidationFailuresTotal prometheus.Counter
	ProviderCallsTotal        *prometheus.CounterVec
	WarmedIPs                 prometheus.Gauge
	LookupDuration            prometheus.Histogram

	cacheHits            atomic.Uint64
	cacheStaleServes     atomic.Uint64
	cacheMisses          atomic.Uint64
	lookupFailures       atomic.Uint64
	revalidations        atomic.Uint64
	revalidationFailures atomic.Uint64

	mu            sync.Mutex
	providerCalls map[string]uint64
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_cache_hits_total",
			Help: "Lookups answered by a fresh cache entry",
		}),
		CacheStaleServesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_cache_stale_serves_total",
			Help: "Lookups answered by a stale cache entry pending revalidation",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_cache_misses_total",
			Help: "Lookups that had to resolve upstream",
		}),
		LookupFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_lookup_failures_total",
			Help: "Lookups that failed after exhausting all providers",
		}),
		RevalidationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_revalidations_total",
			Help: "Background refreshes triggered by stale serves",
		}),
		RevalidationFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trustlens_revalidation_failures_total",
			Help: "Background refreshes that failed and left the stale entry in place",
		}),
		ProviderCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trustlens_provider_calls_total",
			Help: "Provider attempts by provider and outcome",
		}, []string{"provider", "outcome"}),
		WarmedIPs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trustlens_warmed_ips",
			Help: "Candidates warmed into the cache since start",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustlens_lookup_duration_seconds",
			Help:    "Upstream resolution latency",
			Buckets: prometheus.DefBuckets,
		}),
		providerCalls: map[string]uint64{},
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.CacheHitsTotal,
		m.CacheStaleServesTotal,
		m.CacheMissesTotal,
		m.LookupFailuresTotal,
		m.RevalidationsTotal,
		m.RevalidationFailuresTotal,
		m.ProviderCallsTotal,
		m.WarmedIPs,
		m.LookupDuration,
	)
	return m
}

func (m *Metrics) IncCacheHit() {
	m.cacheHits.Add(1)
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) IncCacheStaleServe() {
	m.cacheStaleServes.Add(1)
	m.CacheStaleServesTotal.Inc()
}

func (m *Metrics) IncCacheMiss() {
	m.cacheMisses.Add(1)
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) IncLookupFailure() {
	m.lookupFailures.Add(1)
	m.LookupFailuresTotal.Inc()
}

func (m *Metrics) IncRevalidation() {
	m.revalidations.Add(1)
	m.RevalidationsTotal.Inc()
}

func (m *Metrics) IncRevalidationFailure() {
	m.revalidationFailures.Add(1)
	m.RevalidationFailuresTotal.Inc()
}

func (m *Metrics) IncProviderCall(provider string, outcome string) {
	if provider == "" || outcome == "" {
		return
	}
	m.ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	m.mu.Lock()
	m.providerCalls[provider+"/"+outcome]++
	m.mu.Unlock()
}

func (m *Metrics) ObserveLookupDuration(d time.Duration) {
	m.LookupDuration.Observe(d.Seconds())
}

func (m *Metrics) SetWarmedCount(n int64) {
	m.WarmedIPs.Set(float64(n))
}

type Snapshot struct {
	CacheHits            uint64
	CacheStaleServes     uint64
	CacheMisses          uint64
	LookupFailures       uint64
	Revalidations        uint64
	RevalidationFailures uint64
	// ProviderCalls is keyed "provider/outcome".
	ProviderCalls map[string]uint64
}

// ProviderErrors sums the error outcomes across providers.
func (s Snapshot) ProviderErrors() uint64 {
	var n uint64
	for key, v := range s.ProviderCalls {
		if len(key) > 6 && key[len(key)-6:] == "/error" {
			n += v
		}
	}
	return n
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	calls := make(map[string]uint64, len(m.providerCalls))
	for k, v := range m.providerCalls {
		calls[k] = v
	}
	m.mu.Unlock()
	return Snapshot{
		CacheHits:            m.cacheHits.Load(),
		CacheStaleServes:     m.cacheStaleServes.Load(),
		CacheMisses:          m.cacheMisses.Load(),
		LookupFailures:       m.lookupFailures.Load(),
		Revalidations:        m.revalidations.Load(),
		RevalidationFailures: m.revalidationFailures.Load(),
		ProviderCalls:        calls,
	}
}

func StartServer(ctx context.Context, cfg config.MetricsConfig) error {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
