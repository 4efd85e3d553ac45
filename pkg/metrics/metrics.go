package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Canonicalization metrics
	RecordsCanonicalized  *prometheus.CounterVec
	RecordsSerialized     *prometheus.CounterVec
	UnidentifiedRecords   *prometheus.CounterVec
	CanonicalizeLatency   *prometheus.HistogramVec
	BatchSize             *prometheus.HistogramVec
	BatchFailures         *prometheus.CounterVec
	ProfileRoleMismatches *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics on the default registry
func NewMetrics(namespace, subsystem string) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh registry so
// collectors do not collide across cases.
func NewWithRegistry(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordsCanonicalized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_canonicalized_total",
			Help:      "Total number of raw records canonicalized",
		}, []string{"entity"}),
		RecordsSerialized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_serialized_total",
			Help:      "Total number of canonical entities serialized to the wire shape",
		}, []string{"entity"}),
		UnidentifiedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_unidentified_total",
			Help:      "Canonicalized records that carried no identifier",
		}, []string{"entity"}),
		CanonicalizeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "canonicalize_duration_seconds",
			Help:      "Time spent canonicalizing one request, single record or batch",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"entity"}),
		BatchSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_size_records",
			Help:      "Number of records per batch canonicalization",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"entity"}),
		BatchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_failures_total",
			Help:      "Batches abandoned before completion",
		}, []string{"entity", "reason"}),
		ProfileRoleMismatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "profile_role_mismatches_total",
			Help:      "Role profile compositions rejected because the identity has another role",
		}, []string{"role"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
