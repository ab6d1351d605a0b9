// Package lookup orchestrates the cache, the request deduplicator and the
// ordered provider chain into the single LookupIP operation, plus the
// best-effort cache warmer.
package lookup

import (
	"context"
	"errors"
	"sync"
	"time"

	"trustlens/internal/logger"
	"trustlens/internal/metrics"
	"trustlens/pkg/cache"
	"trustlens/pkg/dedup"
	"trustlens/pkg/insight"
	"trustlens/pkg/provider"
)

// ErrUpstreamUnavailable is the terminal lookup failure: every configured
// provider failed or none was configured. The HTTP boundary maps it to 502.
var ErrUpstreamUnavailable = errors.New("all upstream providers unavailable")

// Service resolves IPs through cache, dedup and the provider chain.
// Providers are strictly ordered, never raced: the primary is cheaper and
// higher quality, the rest are fallbacks, not competitors.
type Service struct {
	store   cache.Store
	group   *dedup.Group
	sources []provider.Source
	log     *logger.Logger
	metrics *metrics.Metrics

	revalMu      sync.Mutex
	revalidating map[string]struct{}
}

func New(store cache.Store, sources []provider.Source, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:        store,
		group:        dedup.New(),
		sources:      sources,
		log:          log,
		metrics:      m,
		revalidating: make(map[string]struct{}),
	}
}

func cacheKey(ip string) string { return "ip:" + ip }

// LookupIP returns the normalized insight for ip.
//
// Fresh cache hits return immediately. Stale hits also return immediately
// and trigger one background revalidation; availability beats freshness
// here, so a failed refresh leaves the stale entry in place. Misses go
// through the deduplicator so a thundering herd costs exactly one upstream
// resolution per key.
func (s *Service) LookupIP(ctx context.Context, ip string) (insight.Insight, error) {
	key := cacheKey(ip)
	if e, stale, ok := s.store.GetWithStale(key); ok {
		if !stale {
			s.metrics.IncCacheHit()
			return e.Data, nil
		}
		s.metrics.IncCacheStaleServe()
		s.revalidate(ip)
		return e.Data, nil
	}
	s.metrics.IncCacheMiss()

	v, err := s.group.Do(key, func() (any, error) {
		return s.resolve(ctx, ip)
	})
	if err != nil {
		s.metrics.IncLookupFailure()
		return insight.Insight{}, err
	}
	return v.(insight.Insight), nil
}

// revalidate refreshes a stale entry in the background. At most one
// refresh per key runs at a time; results and failures stay out of the
// foreground path entirely.
func (s *Service) revalidate(ip string) {
	key := cacheKey(ip)
	s.revalMu.Lock()
	if _, busy := s.revalidating[key]; busy {
		s.revalMu.Unlock()
		return
	}
	s.revalidating[key] = struct{}{}
	s.revalMu.Unlock()

	s.metrics.IncRevalidation()
	go func() {
		defer func() {
			s.revalMu.Lock()
			delete(s.revalidating, key)
			s.revalMu.Unlock()
		}()
		// Detached on purpose: the stale entry was already served, this
		// refresh answers to the log only.
		if _, err := s.resolve(context.Background(), ip); err != nil {
			s.metrics.IncRevalidationFailure()
			s.log.Warn("revalidation failed", map[string]any{"ip": ip, "err": err.Error()})
		}
	}()
}

// resolve walks the provider chain and caches the first success. Runs
// inside the dedup ticket for misses and standalone for revalidations.
func (s *Service) resolve(ctx context.Context, ip string) (insight.Insight, error) {
	key := cacheKey(ip)
	// Another waiter may have populated the cache while this caller queued
	// for the ticket.
	if e, stale, ok := s.store.GetWithStale(key); ok && !stale {
		return e.Data, nil
	}

	start := time.Now()
	for _, src := range s.sources {
		if src == nil {
			continue
		}
		ins, err := src.Fetch(ctx, ip)
		if err != nil {
			if errors.Is(err, provider.ErrNotConfigured) {
				s.metrics.IncProviderCall(src.Name(), "skipped")
				s.log.Debug("provider skipped", map[string]any{"provider": src.Name()})
				continue
			}
			s.metrics.IncProviderCall(src.Name(), "error")
			s.log.Warn("provider failed", map[string]any{
				"provider": src.Name(), "ip": ip, "err": err.Error(),
			})
			continue
		}
		s.metrics.IncProviderCall(src.Name(), "ok")
		s.metrics.ObserveLookupDuration(time.Since(start))
		s.store.Set(key, ins)
		return ins, nil
	}
	return insight.Insight{}, ErrUpstreamUnavailable
}
