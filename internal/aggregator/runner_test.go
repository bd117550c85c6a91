package aggregator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclone-feed-service/internal/aggregator"
	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
	"github.com/couchcryptid/cyclone-feed-service/internal/observability"
)

type mockPublisher struct {
	published []domain.FeatureCollection
	err       error
}

func (m *mockPublisher) PublishFeatures(_ context.Context, fc domain.FeatureCollection) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, fc)
	return nil
}

func newRunner(t *testing.T, src aggregator.Source, pub aggregator.Publisher) *aggregator.Runner {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(frozenTime))
	t.Cleanup(func() { domain.SetClock(nil) })

	agg := aggregator.New(src, domain.SelectLast, discardLogger(), observability.NewMetricsForTesting(), 2, 0)
	return aggregator.NewRunner(agg, pub, time.Hour, time.Minute, discardLogger(), observability.NewMetricsForTesting())
}

func runUntilCancel(t *testing.T, r *aggregator.Runner, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, r.Run(ctx))
}

func TestRunner_FirstRunStoresSnapshotAndMarksReady(t *testing.T) {
	src := &fakeSource{
		storms: []domain.StormIdentity{{ID: "AL012025", Name: "TESTA"}},
		decks:  map[string]string{"AL012025": testDeck},
	}
	r := newRunner(t, src, nil)

	_, ok := r.Snapshot()
	assert.False(t, ok, "no snapshot before the first run")
	assert.Error(t, r.CheckReadiness(context.Background()))

	runUntilCancel(t, r, 300*time.Millisecond)

	fc, ok := r.Snapshot()
	require.True(t, ok)
	assert.Len(t, fc.Features, 1)
	assert.NoError(t, r.CheckReadiness(context.Background()))
}

func TestRunner_PublishesEachRun(t *testing.T) {
	src := &fakeSource{
		storms: []domain.StormIdentity{{ID: "AL012025", Name: "TESTA"}},
		decks:  map[string]string{"AL012025": testDeck},
	}
	pub := &mockPublisher{}
	r := newRunner(t, src, pub)

	runUntilCancel(t, r, 300*time.Millisecond)

	require.Len(t, pub.published, 1)
	assert.Len(t, pub.published[0].Features, 1)
}

func TestRunner_PublishFailureDoesNotStopLoop(t *testing.T) {
	src := &fakeSource{
		storms: []domain.StormIdentity{{ID: "AL012025", Name: "TESTA"}},
		decks:  map[string]string{"AL012025": testDeck},
	}
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	r := newRunner(t, src, pub)

	runUntilCancel(t, r, 300*time.Millisecond)

	fc, ok := r.Snapshot()
	require.True(t, ok, "snapshot still updated when publishing fails")
	assert.Len(t, fc.Features, 1)
}

func TestRunner_ListingFailureStoresEmptyFallbackOnly(t *testing.T) {
	src := &fakeSource{discoverErr: errors.New("fetch storm listing: timeout")}
	r := newRunner(t, src, nil)

	runUntilCancel(t, r, 300*time.Millisecond)

	fc, ok := r.Snapshot()
	require.True(t, ok, "an empty well-formed collection is served when nothing better exists")
	assert.NotNil(t, fc.Features)
	assert.Empty(t, fc.Features)
	assert.Error(t, r.CheckReadiness(context.Background()), "a failed listing fetch does not mark the service ready")
}

func TestRunner_FailedRunRetriesBeforeRefreshInterval(t *testing.T) {
	src := &fakeSource{discoverErr: errors.New("fetch storm listing: timeout")}
	r := newRunner(t, src, nil)

	// The refresh interval is an hour; within one second only the backoff
	// schedule (200ms, 400ms, ...) can trigger further listing fetches.
	runUntilCancel(t, r, time.Second)

	assert.GreaterOrEqual(t, src.discovers.Load(), int64(2),
		"a failed listing fetch is retried with backoff, not deferred a full interval")
}

func TestRunner_SuccessResetsRetryCadence(t *testing.T) {
	src := &fakeSource{
		storms: []domain.StormIdentity{{ID: "AL012025", Name: "TESTA"}},
		decks:  map[string]string{"AL012025": testDeck},
	}
	r := newRunner(t, src, nil)

	runUntilCancel(t, r, 300*time.Millisecond)

	// A successful run waits out the full refresh interval instead of the
	// backoff schedule, so no further listing fetch happens within the window.
	assert.Equal(t, int64(1), src.discovers.Load())
	_, ok := r.Snapshot()
	assert.True(t, ok)
}

func TestRunner_ContextCancellation(t *testing.T) {
	src := &fakeSource{}
	r := newRunner(t, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))
}
