package config

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Security      SecurityConfig      `mapstructure:"security"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Warming       WarmingConfig       `mapstructure:"warming"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type SecurityConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Tokens  []TokenConfig `mapstructure:"tokens"`
}

type TokenConfig struct {
	Value string `mapstructure:"value"`
}

type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	TTLMs      int    `mapstructure:"ttl_ms"`
	StaleTTLMs int    `mapstructure:"stale_ttl_ms"`
	// Path is the on-disk location of the kv backend; unused by memory.
	Path string `mapstructure:"path"`
}

func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLMs) * time.Millisecond }

func (c CacheConfig) StaleTTL() time.Duration {
	return time.Duration(c.StaleTTLMs) * time.Millisecond
}

type ProvidersConfig struct {
	// Token values support env:/file: indirection, see ResolveSecret.
	IPInfoToken string `mapstructure:"ipinfo_token"`
	RadarToken  string `mapstructure:"radar_token"`
	TimeoutMs   int    `mapstructure:"timeout_ms"`
	// MMDBPath enables the optional offline fallback source.
	MMDBPath string `mapstructure:"mmdb_path"`
}

func (c ProvidersConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type WarmingConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	DelayMs int      `mapstructure:"delay_ms"`
	IPs     []string `mapstructure:"ips"`
}

func (c WarmingConfig) Delay() time.Duration { return time.Duration(c.DelayMs) * time.Millisecond }

type MetricsConfig struct {
	Address string              `mapstructure:"address"`
	Path    string              `mapstructure:"path"`
	Export  MetricsExportConfig `mapstructure:"export"`
}

type MetricsExportConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RemoteWriteURL  string `mapstructure:"remote_write_url"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

type ObservabilityConfig struct {
	TracesLimit int                   `mapstructure:"traces_limit"`
	AlertsLimit int                   `mapstructure:"alerts_limit"`
	Alerts      AlertThresholdsConfig `mapstructure:"alerts"`
	Pprof       bool                  `mapstructure:"pprof"`
	PprofPath   string                `mapstructure:"pprof_path"`
}

type AlertThresholdsConfig struct {
	LookupFailures  uint64 `mapstructure:"lookup_failures"`
	ProviderErrors  uint64 `mapstructure:"provider_errors"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	LokiURL    string `mapstructure:"loki_url"`
	ElasticURL string `mapstructure:"elastic_url"`
}

// defaultWarmIPs are well-known resolver addresses used when no explicit
// warming candidate list is configured.
var defaultWarmIPs = []string{
	"8.8.8.8",
	"8.8.4.4",
	"1.1.1.1",
	"1.0.0.1",
	"9.9.9.9",
	"208.67.222.222",
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	bindEnvOverrides(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return finish(v)
}

// LoadFromBytes parses a YAML document directly; tests use it to avoid
// touching the filesystem.
func LoadFromBytes(data []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	bindEnvOverrides(v)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindEnvOverrides wires the deploy-time environment keys. The config file
// is the source of truth; these exist so containerized deployments can
// override the hot knobs without shipping a new file.
func bindEnvOverrides(v *viper.Viper) {
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("cache.ttl_ms", "CACHE_TTL_MS")
	_ = v.BindEnv("cache.stale_ttl_ms", "CACHE_STALE_TTL_MS")
	_ = v.BindEnv("providers.ipinfo_token", "IPINFO_TOKEN")
	_ = v.BindEnv("providers.radar_token", "RADAR_TOKEN")
	_ = v.BindEnv("providers.timeout_ms", "CLIENT_TIMEOUT_MS")
	_ = v.BindEnv("warming.enabled", "CACHE_WARMING_ENABLED")
	_ = v.BindEnv("warming.delay_ms", "CACHE_WARMING_DELAY_MS")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.TTLMs == 0 {
		cfg.Cache.TTLMs = int((1 * time.Hour).Milliseconds())
	}
	if cfg.Cache.StaleTTLMs == 0 {
		cfg.Cache.StaleTTLMs = int((6 * time.Hour).Milliseconds())
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/cache"
	}
	if cfg.Providers.TimeoutMs == 0 {
		cfg.Providers.TimeoutMs = 2500
	}
	if cfg.Warming.DelayMs == 0 {
		cfg.Warming.DelayMs = 500
	}
	if len(cfg.Warming.IPs) == 0 {
		cfg.Warming.IPs = append([]string{}, defaultWarmIPs...)
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Export.IntervalSeconds == 0 {
		cfg.Metrics.Export.IntervalSeconds = 10
	}
	if cfg.Observability.TracesLimit == 0 {
		cfg.Observability.TracesLimit = 1000
	}
	if cfg.Observability.AlertsLimit == 0 {
		cfg.Observability.AlertsLimit = 200
	}
	if cfg.Observability.Alerts.IntervalSeconds == 0 {
		cfg.Observability.Alerts.IntervalSeconds = 30
	}
	if cfg.Observability.PprofPath == "" {
		cfg.Observability.PprofPath = "/debug/pprof"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "memory", "kv":
	default:
		return fmt.Errorf("cache.backend must be memory or kv, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTLMs < 0 || cfg.Cache.StaleTTLMs < 0 {
		return fmt.Errorf("cache ttls must not be negative")
	}
	if cfg.Cache.StaleTTLMs < cfg.Cache.TTLMs {
		return fmt.Errorf("cache.stale_ttl_ms (%d) must be >= cache.ttl_ms (%d)",
			cfg.Cache.StaleTTLMs, cfg.Cache.TTLMs)
	}
	if cfg.Providers.TimeoutMs < 0 {
		return fmt.Errorf("providers.timeout_ms must not be negative")
	}
	if cfg.Security.Enabled && len(cfg.Security.Tokens) == 0 {
		return fmt.Errorf("security.enabled requires at least one token")
	}
	return nil
}
