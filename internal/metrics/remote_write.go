package metrics

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"trustlens/internal/config"

	"github.com/golang/snappy"
	"github.com/prometheus/prometheus/prompb"
)

// StartRemoteWrite pushes the core lookup series to a Prometheus
// remote-write endpoint at a fixed interval. Best effort: failed pushes are
// dropped, the next tick retries from the current snapshot.
func StartRemoteWrite(ctx context.Context, cfg config.MetricsExportConfig, m *Metrics) {
	if !cfg.Enabled || cfg.RemoteWriteURL == "" {
		return
	}
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sendSnapshot(ctx, client, cfg.RemoteWriteURL, m.Snapshot())
			}
		}
	}()
}

func sendSnapshot(ctx context.Context, client *http.Client, url string, snap Snapshot) {
	now := time.Now().UnixMilli()
	series := []prompb.TimeSeries{
		newSeries("trustlens_cache_hits_total", snap.CacheHits, now),
		newSeries("trustlens_cache_stale_serves_total", snap.CacheStaleServes, now),
		newSeries("trustlens_cache_misses_total", snap.CacheMisses, now),
		newSeries("trustlens_lookup_failures_total", snap.LookupFailures, now),
		newSeries("trustlens_revalidations_total", snap.Revalidations, now),
	}
	req := &prompb.WriteRequest{Timeseries: series}
	data, err := req.Marshal()
	if err != nil {
		return
	}
	compressed := snappy.Encode(nil, data)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(compressed))
	if err != nil {
		return
	}
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")
	_, _ = client.Do(httpReq)
}

func newSeries(name string, value uint64, ts int64) prompb.TimeSeries {
	return prompb.TimeSeries{
		Labels:  []prompb.Label{{Name: "__name__", Value: name}},
		Samples: []prompb.Sample{{Value: float64(value), Timestamp: ts}},
	}
}
