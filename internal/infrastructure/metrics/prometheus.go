package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "advance_manager"

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	collector *Collector

	cacheHitRate        *prometheus.GaugeVec
	grpcRequests        *prometheus.CounterVec
	grpcDuration        *prometheus.HistogramVec
	grpcErrors          *prometheus.CounterVec
	grpcOutcomes        *prometheus.CounterVec
	consistencyFailures *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec
	denied              *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter registered on reg
// and attaches it to the collector.
func NewPrometheusExporter(collector *Collector, reg prometheus.Registerer) *PrometheusExporter {
	factory := promauto.With(reg)
	e := &PrometheusExporter{
		collector: collector,
		cacheHitRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_hit_rate",
			Help:      "Current cache hit rate (0.0 to 1.0)",
		}, []string{"cache"}),
		grpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total number of gRPC requests",
		}, []string{"method"}),
		grpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "Duration of gRPC requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"method"}),
		grpcErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_errors_total",
			Help:      "Total number of gRPC errors",
		}, []string{"method"}),
		grpcOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_outcomes_total",
			Help:      "gRPC responses by result code, including domain failures returned in-band",
		}, []string{"method", "code"}),
		consistencyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_failures_total",
			Help:      "Compensating wallet/ledger reversals that failed; each one is an accounting discrepancy",
		}, []string{"operation"}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-actor cooldown",
		}, []string{"action"}),
		denied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denied_total",
			Help:      "Requests rejected by the authorization gate",
		}, []string{"action"}),
	}
	collector.SetExporter(e)
	return e
}

// Update updates Gauge metrics from the collector.
// Counters are updated as events happen, so only gauges are refreshed here.
func (e *PrometheusExporter) Update() {
	for name, m := range e.collector.GetCacheMetrics() {
		e.cacheHitRate.WithLabelValues(name).Set(m.HitRate)
	}
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(method string) {
	e.grpcRequests.WithLabelValues(method).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(method string, durationSeconds float64) {
	e.grpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordError records an error in Prometheus.
func (e *PrometheusExporter) RecordError(method string) {
	e.grpcErrors.WithLabelValues(method).Inc()
}

// RecordOutcome records a response result code in Prometheus.
func (e *PrometheusExporter) RecordOutcome(method, code string) {
	e.grpcOutcomes.WithLabelValues(method, code).Inc()
}
