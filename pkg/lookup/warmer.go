package lookup

import (
	"context"
	"sync/atomic"
	"time"

	"trustlens/internal/logger"
	"trustlens/pkg/insight"
)

// LookupFunc is the operation the warmer drives, normally Service.LookupIP.
type LookupFunc func(ctx context.Context, ip string) (insight.Insight, error)

// WarmOptions controls one warm pass.
type WarmOptions struct {
	Enabled bool
	// Delay spaces the candidate lookups; warming is sequential on purpose
	// so upstream rate limits are respected.
	Delay time.Duration
	IPs   []string
}

// Warmer pre-populates the cache for a fixed candidate list. Strictly
// best-effort: a candidate failure is logged and skipped, a pass already in
// progress makes a new call a no-op.
type Warmer struct {
	log        *logger.Logger
	inProgress atomic.Bool
	warmed     atomic.Int64
}

func NewWarmer(log *logger.Logger) *Warmer {
	return &Warmer{log: log}
}

// InProgress reports whether a warm pass is currently running.
func (w *Warmer) InProgress() bool { return w.inProgress.Load() }

// WarmedCount reports how many candidates have been warmed successfully
// across all passes.
func (w *Warmer) WarmedCount() int64 { return w.warmed.Load() }

// Warm runs one sequential warm pass. Disabled or concurrent calls return
// immediately. Context cancellation stops the pass between candidates.
func (w *Warmer) Warm(ctx context.Context, lookup LookupFunc, opts WarmOptions) {
	if !opts.Enabled || len(opts.IPs) == 0 {
		return
	}
	if !w.inProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.inProgress.Store(false)

	w.log.Info("cache warming started", map[string]any{"candidates": len(opts.IPs)})
	for i, ip := range opts.IPs {
		if ctx.Err() != nil {
			return
		}
		if _, err := lookup(ctx, ip); err != nil {
			w.log.Warn("warm lookup failed", map[string]any{"ip": ip, "err": err.Error()})
		} else {
			w.warmed.Add(1)
		}
		if opts.Delay > 0 && i < len(opts.IPs)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(opts.Delay):
			}
		}
	}
	w.log.Info("cache warming finished", map[string]any{"warmed": w.warmed.Load()})
}
