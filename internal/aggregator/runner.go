package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/couchcryptid/cyclone-feed-service/internal/observability"
)

// Publisher forwards a finished collection downstream.
type Publisher interface {
	PublishFeatures(ctx context.Context, fc domain.FeatureCollection) error
}

// Runner refreshes the feature collection on a fixed interval and keeps the
// most recent snapshot for the HTTP surface.
type Runner struct {
	agg        *Aggregator
	publisher  Publisher // nil disables publishing
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics

	snapshot atomic.Pointer[domain.FeatureCollection]
	ready    atomic.Bool
}

// NewRunner creates a Runner. Each run is bounded by runTimeout; runs start
// every interval. Pass a nil publisher to disable the downstream feed.
func NewRunner(agg *Aggregator, publisher Publisher, interval, runTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		agg:        agg,
		publisher:  publisher,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
		metrics:    metrics,
	}
}

// Snapshot returns the most recent collection. ok is false before the first
// run completes.
func (r *Runner) Snapshot() (domain.FeatureCollection, bool) {
	fc := r.snapshot.Load()
	if fc == nil {
		return domain.FeatureCollection{}, false
	}
	return *fc, true
}

// CheckReadiness returns nil once at least one aggregation run has completed
// with a reachable listing page.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no aggregation run has succeeded yet")
	}
	return nil
}

// Run executes the refresh loop until the context is cancelled. The first
// run starts immediately. A run whose listing fetch failed is retried with
// exponential backoff instead of waiting a full interval.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("runner started", "interval", r.interval, "run_timeout", r.runTimeout)
	r.metrics.RunnerRunning.Set(1)
	defer r.metrics.RunnerRunning.Set(0)

	backoff := initialBackoff
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopping", "reason", ctx.Err())
			return nil
		default:
		}

		runCtx, cancel := context.WithTimeout(ctx, r.runTimeout)
		fc, err := r.agg.Aggregate(runCtx)
		cancel()

		if err != nil {
			// Keep serving the previous snapshot through a transient listing
			// outage; store the empty collection only when there is nothing
			// better, so callers still get a well-formed document.
			if r.snapshot.Load() == nil {
				r.snapshot.Store(&fc)
			}
			r.logger.Error("aggregation run failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = initialBackoff

		r.snapshot.Store(&fc)
		r.ready.Store(true)
		r.metrics.LastSuccessTimestamp.SetToCurrentTime()
		r.logger.Info("collection refreshed", "total_features", len(fc.Features))

		r.publish(ctx, fc)

		if !sleepWithContext(ctx, r.interval) {
			return nil
		}
	}
}

func (r *Runner) publish(ctx context.Context, fc domain.FeatureCollection) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishFeatures(ctx, fc); err != nil {
		r.logger.Error("feed publish failed", "error", err, "total_features", len(fc.Features))
		return
	}
	r.metrics.FeaturesPublished.Add(float64(len(fc.Features)))
}

// Exponential backoff after a failed listing fetch: start at 200ms, double
// each retry, cap at 5s. Keeps retries prompt without hammering the source.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
