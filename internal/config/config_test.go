package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFromBytesAppliesDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("server:\n  address: \":8181\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":8181" {
		t.Fatalf("explicit value lost: %q", cfg.Server.Address)
	}
	if cfg.Cache.Backend != "memory" {
		t.Fatalf("expected memory default, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL() != time.Hour {
		t.Fatalf("expected 1h ttl default, got %v", cfg.Cache.TTL())
	}
	if cfg.Cache.StaleTTL() != 6*time.Hour {
		t.Fatalf("expected 6h stale ttl default, got %v", cfg.Cache.StaleTTL())
	}
	if cfg.Providers.Timeout() != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s provider timeout default, got %v", cfg.Providers.Timeout())
	}
	if cfg.Warming.Delay() != 500*time.Millisecond {
		t.Fatalf("expected 500ms warm delay default, got %v", cfg.Warming.Delay())
	}
	if len(cfg.Warming.IPs) == 0 {
		t.Fatalf("expected default warm candidates")
	}
	if cfg.Metrics.Address != ":9090" || cfg.Metrics.Path != "/metrics" {
		t.Fatalf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected info log level default, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromBytesFullDocument(t *testing.T) {
	doc := `
server:
  address: ":8080"
security:
  enabled: true
  tokens:
    - value: "env:TRUSTLENS_API_TOKEN"
cache:
  backend: kv
  ttl_ms: 60000
  stale_ttl_ms: 360000
  path: /var/lib/trustlens/cache
providers:
  ipinfo_token: "env:IPINFO_TOKEN"
  radar_token: "env:RADAR_TOKEN"
  timeout_ms: 1500
warming:
  enabled: true
  delay_ms: 250
  ips: ["8.8.8.8", "1.1.1.1"]
observability:
  traces_limit: 50
  alerts:
    lookup_failures: 5
    provider_errors: 10
`
	cfg, err := LoadFromBytes([]byte(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Backend != "kv" || cfg.Cache.Path != "/var/lib/trustlens/cache" {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Providers.Timeout() != 1500*time.Millisecond {
		t.Fatalf("unexpected provider timeout: %v", cfg.Providers.Timeout())
	}
	if !cfg.Warming.Enabled || len(cfg.Warming.IPs) != 2 {
		t.Fatalf("unexpected warming config: %+v", cfg.Warming)
	}
	if !cfg.Security.Enabled || len(cfg.Security.Tokens) != 1 {
		t.Fatalf("unexpected security config: %+v", cfg.Security)
	}
	if cfg.Observability.TracesLimit != 50 {
		t.Fatalf("unexpected traces limit: %d", cfg.Observability.TracesLimit)
	}
	if cfg.Observability.Alerts.LookupFailures != 5 || cfg.Observability.Alerts.ProviderErrors != 10 {
		t.Fatalf("unexpected alert thresholds: %+v", cfg.Observability.Alerts)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "kv")
	t.Setenv("CACHE_TTL_MS", "120000")
	t.Setenv("CACHE_STALE_TTL_MS", "600000")
	t.Setenv("IPINFO_TOKEN", "from-env")
	t.Setenv("CACHE_WARMING_ENABLED", "true")

	cfg, err := LoadFromBytes([]byte("cache:\n  backend: memory\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.Backend != "kv" {
		t.Fatalf("env must override the file, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL() != 2*time.Minute {
		t.Fatalf("unexpected ttl: %v", cfg.Cache.TTL())
	}
	if cfg.Providers.IPInfoToken != "from-env" {
		t.Fatalf("unexpected token: %q", cfg.Providers.IPInfoToken)
	}
	if !cfg.Warming.Enabled {
		t.Fatalf("expected warming enabled from env")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown backend",
			doc:  "cache:\n  backend: redis\n",
			want: "cache.backend",
		},
		{
			name: "stale shorter than fresh",
			doc:  "cache:\n  ttl_ms: 60000\n  stale_ttl_ms: 1000\n",
			want: "stale_ttl_ms",
		},
		{
			name: "security without tokens",
			doc:  "security:\n  enabled: true\n",
			want: "security.enabled",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tc.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadFromBytesRejectsMalformedYAML(t *testing.T) {
	if _, err := LoadFromBytes([]byte("cache: [unclosed")); err == nil {
		t.Fatalf("expected parse error")
	}
}
