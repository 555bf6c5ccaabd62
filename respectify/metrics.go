package respectify

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respectify_client_requests_total",
			Help: "Total number of API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respectify_client_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respectify_client_errors_total",
			Help: "Total number of errors by kind",
		},
		[]string{"kind"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respectify_client_circuit_breaker_state",
			Help: "Current state of circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	circuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respectify_client_circuit_breaker_trips_total",
			Help: "Total number of circuit breaker trips",
		},
		[]string{"name"},
	)
)

// defaultMetrics is the always-on recorder used by components without a
// client reference, such as breaker state callbacks.
var defaultMetrics = NewMetricsRecorder(true)

// MetricsRecorder provides methods to record metrics.
type MetricsRecorder struct {
	enabled bool
}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder(enabled bool) *MetricsRecorder {
	return &MetricsRecorder{enabled: enabled}
}

// RecordRequest records a completed request.
func (m *MetricsRecorder) RecordRequest(endpoint, status string) {
	if !m.enabled {
		return
	}
	requestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordRequestDuration records request duration.
func (m *MetricsRecorder) RecordRequestDuration(endpoint string, seconds float64) {
	if !m.enabled {
		return
	}
	requestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordError records an error by kind.
func (m *MetricsRecorder) RecordError(kind string) {
	if !m.enabled {
		return
	}
	errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCircuitBreakerState records circuit breaker state.
func (m *MetricsRecorder) RecordCircuitBreakerState(name string, state int) {
	if !m.enabled {
		return
	}
	circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip.
func (m *MetricsRecorder) RecordCircuitBreakerTrip(name string) {
	if !m.enabled {
		return
	}
	circuitBreakerTrips.WithLabelValues(name).Inc()
}

// GetMetricsHandler returns an HTTP handler for Prometheus metrics.
func GetMetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RegisterCustomMetrics allows registration of custom metrics.
func RegisterCustomMetrics(collector prometheus.Collector) error {
	return prometheus.Register(collector)
}
