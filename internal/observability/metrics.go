package observability

import (
	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shelter_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// shelter refresh pipeline.
type Metrics struct {
	RefresherRunning prometheus.Gauge
	Refreshes        *prometheus.CounterVec // labels: outcome={updated,unchanged,no_data,error}
	RefreshDuration  prometheus.Histogram

	// Fetch boundary.
	FetchRequests    *prometheus.CounterVec // labels: source={cache,api}, outcome={success,error}
	FetchAPIDuration prometheus.Histogram

	// Snapshot contents.
	SheltersInSnapshot prometheus.Gauge
	SnapshotBuiltAt    prometheus.Gauge
	CoercionFailures   *prometheus.CounterVec // labels: field={area,capacity,accessibility}
	MalformedGeometry  prometheus.Counter

	// Loaders.
	LoaderErrors     *prometheus.CounterVec // labels: loader
	MessagesProduced prometheus.Counter
	SnapshotsDeleted prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a fetch-normalize-load cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Dataset fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_api_duration_seconds",
			Help:      "Catalog API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SheltersInSnapshot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shelters_in_snapshot",
			Help:      "Number of shelters in the snapshot being served.",
		}),
		SnapshotBuiltAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_built_timestamp_seconds",
			Help:      "Unix time the served snapshot was built.",
		}),
		CoercionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coercion_failures_total",
			Help:      "Field values replaced by a default during normalization.",
		}, []string{"field"}),
		MalformedGeometry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_geometry_total",
			Help:      "Features whose coordinates could not be extracted.",
		}),
		LoaderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_errors_total",
			Help:      "Snapshot loader failures by loader.",
		}, []string{"loader"}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total shelter messages written to the sink topic.",
		}),
		SnapshotsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_deleted_total",
			Help:      "Stored snapshots removed by retention.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefresherRunning,
		m.Refreshes,
		m.RefreshDuration,
		m.FetchRequests,
		m.FetchAPIDuration,
		m.SheltersInSnapshot,
		m.SnapshotBuiltAt,
		m.CoercionFailures,
		m.MalformedGeometry,
		m.LoaderErrors,
		m.MessagesProduced,
		m.SnapshotsDeleted,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are never exposed. One-shot
// tools use it where nothing serves /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// RecordStats adds a normalization run's substitutions to the counters.
func (m *Metrics) RecordStats(stats domain.NormalizeStats) {
	m.CoercionFailures.WithLabelValues("area").Add(float64(stats.AreaInvalid))
	m.CoercionFailures.WithLabelValues("capacity").Add(float64(stats.CapacityInvalid))
	m.CoercionFailures.WithLabelValues("accessibility").Add(float64(stats.AccessibilityInvalid))
	m.MalformedGeometry.Add(float64(stats.MalformedGeometry))
}

// RecordSnapshot updates the gauges describing the served snapshot.
func (m *Metrics) RecordSnapshot(snap domain.Snapshot) {
	m.SheltersInSnapshot.Set(float64(len(snap.Shelters)))
	m.SnapshotBuiltAt.Set(float64(snap.BuiltAt.Unix()))
}
