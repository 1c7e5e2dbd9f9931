package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "swim_conditions"

// Metrics holds every instrument the engine emits. One instance is shared by
// the orchestrator, the service, and the scheduler.
type Metrics struct {
	SourceFetches   *prometheus.CounterVec
	SourceDuration  *prometheus.HistogramVec
	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	OverallScore    prometheus.Gauge
	SnapshotTime    prometheus.Gauge
}

// NewMetrics registers all instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SourceFetches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Source lookups by provider and settled status.",
		}, []string{"source", "status"}),
		SourceDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Time spent per source lookup, including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		Refreshes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Full gather-and-score cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a full gather-and-score cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
		OverallScore: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Overall swim score of the latest snapshot.",
		}),
		SnapshotTime: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_timestamp_seconds",
			Help:      "Unix time of the latest stored snapshot.",
		}),
	}
}

// NewMetricsForTesting returns metrics bound to a throwaway registry.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

// ObserveSourceFetch records one settled source lookup.
func (m *Metrics) ObserveSourceFetch(source, status string, elapsed time.Duration) {
	m.SourceFetches.WithLabelValues(source, status).Inc()
	m.SourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveRefreshSuccess records a completed cycle and the resulting snapshot.
func (m *Metrics) ObserveRefreshSuccess(elapsed time.Duration, overallScore int, at time.Time) {
	m.Refreshes.WithLabelValues("success").Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
	m.OverallScore.Set(float64(overallScore))
	m.SnapshotTime.Set(float64(at.Unix()))
}

// ObserveRefreshFailure records a cycle that produced no snapshot.
func (m *Metrics) ObserveRefreshFailure(elapsed time.Duration) {
	m.Refreshes.WithLabelValues("failure").Inc()
	m.RefreshDuration.Observe(elapsed.Seconds())
}
