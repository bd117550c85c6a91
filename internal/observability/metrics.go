package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation pipeline.
type Metrics struct {
	StormsDiscovered  prometheus.Counter
	DiscoveryFailures prometheus.Counter
	ResolveFailures   *prometheus.CounterVec // labels: reason={no_link,transport}
	FixesParsed       prometheus.Counter
	EmptyFixSets      prometheus.Counter
	NoDataFeatures    prometheus.Counter
	FeaturesPublished prometheus.Counter

	AggregationDuration  prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
	RunnerRunning        prometheus.Gauge

	// Advisory URL cache metrics.
	ResolveCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StormsDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "storms_discovered_total",
			Help:      "Total storm identities extracted from the listing page.",
		}),
		DiscoveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "discovery_failures_total",
			Help:      "Total aggregation runs that could not obtain the listing page.",
		}),
		ResolveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "resolve_failures_total",
			Help:      "Per-storm advisory resolution failures by reason.",
		}, []string{"reason"}),
		FixesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "fixes_parsed_total",
			Help:      "Total advisory fix records parsed from decks.",
		}),
		EmptyFixSets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "empty_fix_sets_total",
			Help:      "Total advisory decks that parsed to zero valid fixes.",
		}),
		NoDataFeatures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "no_data_features_total",
			Help:      "Total features emitted with the NO_DATA quality marker.",
		}),
		FeaturesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "features_published_total",
			Help:      "Total features published to the Kafka feed.",
		}),
		AggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyclone_feed",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a complete discover-resolve-parse aggregation run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_feed",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last aggregation run whose listing fetch succeeded.",
		}),
		RunnerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_feed",
			Name:      "runner_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		ResolveCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone_feed",
			Name:      "resolve_cache_total",
			Help:      "Advisory URL cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.StormsDiscovered,
		m.DiscoveryFailures,
		m.ResolveFailures,
		m.FixesParsed,
		m.EmptyFixSets,
		m.NoDataFeatures,
		m.FeaturesPublished,
		m.AggregationDuration,
		m.LastSuccessTimestamp,
		m.RunnerRunning,
		m.ResolveCache,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StormsDiscovered:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "storms_discovered_total"}),
		DiscoveryFailures:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "discovery_failures_total"}),
		ResolveFailures:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "resolve_failures_total"}, []string{"reason"}),
		FixesParsed:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "fixes_parsed_total"}),
		EmptyFixSets:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "empty_fix_sets_total"}),
		NoDataFeatures:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "no_data_features_total"}),
		FeaturesPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "features_published_total"}),
		AggregationDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cyclone_feed", Name: "aggregation_duration_seconds"}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cyclone_feed", Name: "last_success_timestamp_seconds"}),
		RunnerRunning:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cyclone_feed", Name: "runner_running"}),
		ResolveCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cyclone_feed", Name: "resolve_cache_total"}, []string{"result"}),
	}
}
