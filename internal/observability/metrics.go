package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// waterlogging monitor.
type Metrics struct {
	RefreshesTotal   *prometheus.CounterVec // labels: trigger={scheduled,report,manual}
	RefreshCoalesced prometheus.Counter
	RefreshDuration  prometheus.Histogram
	HighRiskZones    prometheus.Gauge
	PersistErrors    prometheus.Counter

	// Rainfall source metrics.
	RainfallReadings *prometheus.CounterVec // labels: source={provider,simulated}

	// Report lifecycle metrics.
	ReportsSubmitted prometheus.Counter
	ReportsVerified  prometheus.Counter
	GeocodeRequests  *prometheus.CounterVec // labels: outcome={resolved,fallback}
	GeocodeCache     *prometheus.CounterVec // labels: result={hit,miss}

	// Alert publishing metrics.
	AlertsPublished    prometheus.Counter
	AlertPublishErrors prometheus.Counter
}

// NewMetrics creates and registers all monitor metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshesTotal,
		m.RefreshCoalesced,
		m.RefreshDuration,
		m.HighRiskZones,
		m.PersistErrors,
		m.RainfallReadings,
		m.ReportsSubmitted,
		m.ReportsVerified,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.AlertsPublished,
		m.AlertPublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "refreshes_total",
			Help:      "Completed snapshot refreshes by trigger.",
		}, []string{"trigger"}),
		RefreshCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "refreshes_coalesced_total",
			Help:      "Refresh requests dropped because one was already in flight.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waterlog",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete snapshot refresh.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		HighRiskZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waterlog",
			Name:      "high_risk_zones",
			Help:      "High-risk hotspots in the current snapshot.",
		}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "persist_errors_total",
			Help:      "Failed durable-store writes (best-effort, non-fatal).",
		}),
		RainfallReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "rainfall_readings_total",
			Help:      "Rainfall readings by source.",
		}, []string{"source"}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "reports_submitted_total",
			Help:      "User reports accepted.",
		}),
		ReportsVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "reports_verified_total",
			Help:      "User reports verified.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "geocode_requests_total",
			Help:      "Geocoding attempts by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "alerts_published_total",
			Help:      "High-risk digests published to the alert topic.",
		}),
		AlertPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waterlog",
			Name:      "alert_publish_errors_total",
			Help:      "Failed alert publishes (best-effort, non-fatal).",
		}),
	}
}
