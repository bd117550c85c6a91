// Package aggregator composes storm discovery, advisory resolution, deck
// parsing, and fix selection into one feature collection per run.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/couchcryptid/cyclone-feed-service/internal/observability"
)

// Source is the per-provider adapter contract. One implementation per
// upstream provider; discovery, resolution, and parsing stay behind it so a
// markup change upstream only costs a new adapter.
type Source interface {
	// Info identifies the provider for feature and collection labeling.
	Info() domain.SourceInfo

	// Discover extracts the set of active storm identities. An error means
	// the listing document itself could not be obtained.
	Discover(ctx context.Context) ([]domain.StormIdentity, error)

	// Resolve locates and retrieves one storm's raw advisory deck. Errors
	// wrapping domain.ErrNoAdvisoryLink mean the storm page held no usable
	// link; anything else is a transport failure.
	Resolve(ctx context.Context, identity domain.StormIdentity) (string, error)

	// Parse turns a raw advisory deck into fix records. Never fails;
	// malformed lines are dropped individually.
	Parse(raw string) []domain.AdvisoryFix
}

// Aggregator runs the discover-resolve-parse-select pipeline over one source.
type Aggregator struct {
	source     Source
	policy     domain.SelectPolicy
	logger     *slog.Logger
	metrics    *observability.Metrics
	workers    int
	trackLimit int
}

// New creates an Aggregator. workers bounds the per-storm fan-out; trackLimit
// caps each feature's track history (0 keeps the full deck).
func New(source Source, policy domain.SelectPolicy, logger *slog.Logger, metrics *observability.Metrics, workers, trackLimit int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		source:     source,
		policy:     policy,
		logger:     logger,
		metrics:    metrics,
		workers:    workers,
		trackLimit: trackLimit,
	}
}

// Aggregate produces one feature collection: exactly one feature per
// discovered storm, NO_DATA markers for storms whose advisory data could not
// be obtained. The returned collection is always well-formed; the error is
// non-nil only when the listing document itself could not be fetched, in
// which case the collection is empty.
func (a *Aggregator) Aggregate(ctx context.Context) (domain.FeatureCollection, error) {
	start := time.Now()
	generatedAt := domain.Now()
	info := a.source.Info()

	storms, err := a.source.Discover(ctx)
	if err != nil {
		a.logger.Error("storm discovery failed", "error", err)
		a.metrics.DiscoveryFailures.Inc()
		return domain.FeatureCollection{
			Features:    []domain.StormFeature{},
			GeneratedAt: generatedAt,
			SourceType:  info.Label,
		}, fmt.Errorf("discover storms: %w", err)
	}

	a.metrics.StormsDiscovered.Add(float64(len(storms)))
	a.logger.Info("storms discovered", "count", len(storms))

	// Per-storm processing shares no mutable state, so fan out over a bounded
	// worker pool. Each goroutine writes only its own slot, which also keeps
	// feature order aligned with discovery order.
	features := make([]domain.StormFeature, len(storms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, identity := range storms {
		g.Go(func() error {
			features[i] = a.buildFeature(gctx, identity, info, generatedAt)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures become NO_DATA features

	a.metrics.AggregationDuration.Observe(time.Since(start).Seconds())

	return domain.FeatureCollection{
		Features:    features,
		GeneratedAt: generatedAt,
		SourceType:  info.Label,
	}, nil
}

// buildFeature runs one storm's resolve-parse-select chain. Every failure
// path yields a NO_DATA feature rather than an error; a discovered storm
// always contributes exactly one feature.
func (a *Aggregator) buildFeature(ctx context.Context, identity domain.StormIdentity, info domain.SourceInfo, generatedAt time.Time) domain.StormFeature {
	raw, err := a.source.Resolve(ctx, identity)
	if err != nil {
		reason := "transport"
		if errors.Is(err, domain.ErrNoAdvisoryLink) {
			reason = "no_link"
		}
		a.logger.Warn("advisory resolution failed",
			"storm_id", identity.ID,
			"storm_name", identity.Name,
			"reason", reason,
			"error", err,
		)
		a.metrics.ResolveFailures.WithLabelValues(reason).Inc()
		return a.noDataFeature(identity, info, generatedAt)
	}

	fixes := a.source.Parse(raw)
	a.metrics.FixesParsed.Add(float64(len(fixes)))

	latest, history, ok := domain.Select(fixes, a.policy)
	if !ok {
		a.logger.Warn("advisory deck held no valid fixes", "storm_id", identity.ID)
		a.metrics.EmptyFixSets.Inc()
		return a.noDataFeature(identity, info, generatedAt)
	}

	if a.trackLimit > 0 && len(history) > a.trackLimit {
		history = history[len(history)-a.trackLimit:]
	}

	return domain.StormFeature{
		StormID:      identity.ID,
		StormName:    identity.Name,
		Lat:          latest.Lat,
		Lon:          latest.Lon,
		MaxWindKts:   latest.MaxWindKts,
		AdvisoryTime: latest.Time,
		Track:        history,
		SourceAgency: info.Agency,
		Quality:      domain.QualityOK,
	}
}

func (a *Aggregator) noDataFeature(identity domain.StormIdentity, info domain.SourceInfo, generatedAt time.Time) domain.StormFeature {
	a.metrics.NoDataFeatures.Inc()
	return domain.StormFeature{
		StormID:      identity.ID,
		StormName:    identity.Name + " - NO DATA",
		AdvisoryTime: generatedAt,
		SourceAgency: info.Agency,
		Quality:      domain.QualityNoData,
	}
}
