package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"trustlens/api"
	"trustlens/internal/config"
	"trustlens/internal/logger"
	"trustlens/internal/metrics"
	"trustlens/internal/observability"
	"trustlens/pkg/cache"
	"trustlens/pkg/integrations/logs"
	"trustlens/pkg/lookup"
	"trustlens/pkg/provider"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log := buildLogger(cfg)
	log.Info("config loaded", map[string]any{"path": *configPath, "cache_backend": cfg.Cache.Backend})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	go func() {
		if err := metrics.StartServer(ctx, cfg.Metrics); err != nil {
			log.Error("metrics server error", map[string]any{"err": err.Error()})
		}
	}()
	metrics.StartRemoteWrite(ctx, cfg.Metrics.Export, m)

	store, err := buildCache(cfg.Cache)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	primary, secondary, sources := buildSources(cfg.Providers, log)
	service := lookup.New(store, sources, log, m)

	warmer := lookup.NewWarmer(log)
	if cfg.Warming.Enabled {
		go func() {
			warmer.Warm(ctx, service.LookupIP, lookup.WarmOptions{
				Enabled: true,
				Delay:   cfg.Warming.Delay(),
				IPs:     cfg.Warming.IPs,
			})
			m.SetWarmedCount(warmer.WarmedCount())
		}()
	}

	traces := observability.NewStore(cfg.Observability.TracesLimit)
	alerts := observability.NewAlertStore(cfg.Observability.AlertsLimit)
	observability.StartEvaluator(ctx, m, alerts, cfg.Observability.Alerts)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		api.AuthMiddleware(cfg.Security, log),
		api.TraceMiddleware(traces),
		api.AuditMiddleware(log),
		api.CompressionMiddleware(),
	)
	handlers := &api.Handlers{
		Lookup:       service,
		Warmer:       warmer,
		Primary:      primary,
		Secondary:    secondary,
		CacheBackend: store.Backend(),
		Metrics:      m,
		Traces:       traces,
		Alerts:       alerts,
		Log:          log,
	}
	api.RegisterRoutes(router, handlers)
	if cfg.Observability.Pprof {
		api.RegisterPprof(router, cfg.Observability.PprofPath)
	}

	go func() {
		if err := router.Run(cfg.Server.Address); err != nil {
			log.Error("api server error", map[string]any{"err": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("shutdown", nil)
}

func buildLogger(cfg *config.Config) *logger.Logger {
	log := logger.New(cfg.Logging.Level)
	if hook := logs.NewLokiHook(cfg.Logging.LokiURL, nil); hook != nil {
		log.AddHook(hook)
	}
	if hook := logs.NewElasticHook(cfg.Logging.ElasticURL); hook != nil {
		log.AddHook(hook)
	}
	return log
}

func buildCache(cfg config.CacheConfig) (cache.Store, error) {
	opts := cache.Options{TTL: cfg.TTL(), StaleTTL: cfg.StaleTTL()}
	if cfg.Backend == "kv" {
		return cache.NewPebble(cfg.Path, opts)
	}
	return cache.NewMemory(opts), nil
}

// buildSources assembles the ordered provider chain: primary geo/ASN,
// secondary radar, then the optional offline database.
func buildSources(cfg config.ProvidersConfig, log *logger.Logger) (provider.Source, provider.Source, []provider.Source) {
	primary := provider.NewIPInfo(config.ResolveSecret(cfg.IPInfoToken), cfg.Timeout())
	secondary := provider.NewRadar(config.ResolveSecret(cfg.RadarToken), cfg.Timeout())
	sources := []provider.Source{primary, secondary}

	if cfg.MMDBPath != "" {
		local, err := provider.NewMMDB(cfg.MMDBPath)
		if err != nil {
			log.Warn("mmdb unavailable", map[string]any{"path": cfg.MMDBPath, "err": err.Error()})
		} else {
			sources = append(sources, local)
		}
	}
	return primary, secondary, sources
}
