package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// closures pipeline.
type Metrics struct {
	Fetches       prometheus.Counter
	FetchErrors   *prometheus.CounterVec // labels: kind={network,upstream,decode}
	FetchDuration prometheus.Histogram

	CacheLookups *prometheus.CounterVec // labels: tier={payload,records}, result={hit,miss}

	Refreshes          prometheus.Counter
	RunDuration        prometheus.Histogram
	ClosuresExtracted  prometheus.Gauge
	MalformedRecords   prometheus.Counter
	LastRefreshSeconds prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "road_closures",
			Name:      "fetches_total",
			Help:      "Total successful fetches from the closures API.",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "road_closures",
			Name:      "fetch_errors_total",
			Help:      "Fetch failures by kind.",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "road_closures",
			Name:      "fetch_duration_seconds",
			Help:      "Closures API request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "road_closures",
			Name:      "cache_lookups_total",
			Help:      "Disk cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "road_closures",
			Name:      "refreshes_total",
			Help:      "Pipeline runs that fetched fresh data from the API.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "road_closures",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete pipeline run.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ClosuresExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "road_closures",
			Name:      "closures_extracted",
			Help:      "Closure records produced by the most recent extraction.",
		}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "road_closures",
			Name:      "malformed_records_total",
			Help:      "Situation records or location groups skipped as malformed.",
		}),
		LastRefreshSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "road_closures",
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last successful refresh.",
		}),
	}

	prometheus.MustRegister(
		m.Fetches,
		m.FetchErrors,
		m.FetchDuration,
		m.CacheLookups,
		m.Refreshes,
		m.RunDuration,
		m.ClosuresExtracted,
		m.MalformedRecords,
		m.LastRefreshSeconds,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Fetches:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "road_closures", Name: "fetches_total"}),
		FetchErrors:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "road_closures", Name: "fetch_errors_total"}, []string{"kind"}),
		FetchDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "road_closures", Name: "fetch_duration_seconds"}),
		CacheLookups:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "road_closures", Name: "cache_lookups_total"}, []string{"tier", "result"}),
		Refreshes:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "road_closures", Name: "refreshes_total"}),
		RunDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "road_closures", Name: "run_duration_seconds"}),
		ClosuresExtracted:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "road_closures", Name: "closures_extracted"}),
		MalformedRecords:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "road_closures", Name: "malformed_records_total"}),
		LastRefreshSeconds: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "road_closures", Name: "last_refresh_timestamp_seconds"}),
	}
}
