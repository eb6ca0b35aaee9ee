// Package job provides background job schedulers.
package job

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"classichub-service/pkg/locker"
)

// Warmer run results reported to the Recorder.
const (
	RunOK      = "ok"
	RunPartial = "partial"
	RunSkipped = "skipped"
	RunError   = "error"
)

// lockKey guards warming across instances.
const lockKey = "warmer:lock"

// Target is anything that can preload its caches.
type Target interface {
	Warm(ctx context.Context) error
}

// TargetFunc adapts a function to Target.
type TargetFunc func(ctx context.Context) error

// Warm calls f.
func (f TargetFunc) Warm(ctx context.Context) error {
	return f(ctx)
}

// Recorder counts warmer runs. Implemented by metrics.Collector.
type Recorder interface {
	RecordWarmerRun(result string)
}

// WarmerConfig holds warmer scheduling settings.
type WarmerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// TargetResult is the outcome of warming one target.
type TargetResult struct {
	Name     string
	Duration time.Duration
	Error    error
}

// CacheWarmer periodically loads the default views of every service so the
// first visitor after a deploy or an expiry does not wait on upstreams. Only
// one instance warms per interval.
type CacheWarmer struct {
	targets  map[string]Target
	interval time.Duration
	timeout  time.Duration
	locker   locker.DistributedLocker
	recorder Recorder
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheWarmer creates a CacheWarmer. recorder may be nil.
func NewCacheWarmer(
	targets map[string]Target,
	cfg WarmerConfig,
	l locker.DistributedLocker,
	recorder Recorder,
	logger *zap.Logger,
) *CacheWarmer {
	if l == nil {
		l = locker.NewLocal()
	}

	return &CacheWarmer{
		targets:  targets,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		locker:   l,
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins the background loop.
func (w *CacheWarmer) Start(runOnStartup bool) {
	w.ctx, w.cancel = context.WithCancel(context.Background())

	w.logger.Info("starting cache warmer",
		zap.Duration("interval", w.interval),
		zap.Int("targets", len(w.targets)),
		zap.Bool("run_on_startup", runOnStartup),
	)

	w.wg.Add(1)
	go w.run(runOnStartup)
}

// Stop cancels a running warm-up and waits for the loop to exit.
func (w *CacheWarmer) Stop() {
	w.logger.Info("stopping cache warmer")
	w.cancel()
	w.wg.Wait()
	w.logger.Info("cache warmer stopped")
}

func (w *CacheWarmer) run(runOnStartup bool) {
	defer w.wg.Done()

	if runOnStartup {
		w.RunOnce(w.ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(w.ctx)
		}
	}
}

// RunOnce warms every target if this instance gets the lock.
//
// The lock TTL is the interval (cooldown model): after a clean run the lock
// is kept so no other instance warms again before the next tick; after a
// failed run it is released so another instance may retry right away.
func (w *CacheWarmer) RunOnce(ctx context.Context) []TargetResult {
	acquired, err := w.locker.Acquire(ctx, lockKey, w.interval)
	if err != nil {
		w.logger.Error("failed to acquire warmer lock", zap.Error(err))
		w.record(RunError)

		return nil
	}
	if !acquired {
		w.logger.Debug("another instance is warming, skipping")
		w.record(RunSkipped)

		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	results := w.warmAll(runCtx)

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			w.logger.Warn("warming failed",
				zap.String("target", r.Name),
				zap.Duration("duration", r.Duration),
				zap.Error(r.Error),
			)
		}
	}

	switch {
	case failed == 0:
		w.record(RunOK)
		w.logger.Info("caches warmed, lock held for cooldown",
			zap.Int("targets", len(results)),
			zap.Duration("cooldown", w.interval),
		)
	default:
		if err := w.locker.Release(ctx, lockKey); err != nil {
			w.logger.Error("failed to release warmer lock", zap.Error(err))
		}
		if failed == len(results) {
			w.record(RunError)
		} else {
			w.record(RunPartial)
		}
		w.logger.Info("warming completed with errors, lock released for retry",
			zap.Int("targets", len(results)),
			zap.Int("targets_failed", failed),
		)
	}

	return results
}

// warmAll runs every target concurrently. Results are sorted by name.
func (w *CacheWarmer) warmAll(ctx context.Context) []TargetResult {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]TargetResult, 0, len(w.targets))
	)

	for name, target := range w.targets {
		wg.Add(1)
		go func(name string, target Target) {
			defer wg.Done()
			start := time.Now()
			err := target.Warm(ctx)

			mu.Lock()
			results = append(results, TargetResult{Name: name, Duration: time.Since(start), Error: err})
			mu.Unlock()
		}(name, target)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return results
}

func (w *CacheWarmer) record(result string) {
	if w.recorder != nil {
		w.recorder.RecordWarmerRun(result)
	}
}
