package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smarthome"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics groups every collector exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	ReconcileOperations *prometheus.CounterVec
	ReconcileDuration   *prometheus.HistogramVec
	IngestMessages      *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ReconcileOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_operations_total",
			Help:      "Reconciliation operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		ReconcileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation operations in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		IngestMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_messages_total",
			Help:      "Sensor value messages received over MQTT by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status class.",
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ReconcileOperations,
		m.ReconcileDuration,
		m.IngestMessages,
		m.HTTPRequests,
	)
	return m
}

// ObserveReconcile records one reconciliation call.
func (m *Metrics) ObserveReconcile(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.ReconcileOperations.WithLabelValues(operation, outcome).Inc()
	m.ReconcileDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveIngest records one ingested message. outcome is a short reason
// label such as "ok", "decode_error" or "unknown_sensor".
func (m *Metrics) ObserveIngest(outcome string) {
	if m == nil {
		return
	}
	m.IngestMessages.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one HTTP response.
func (m *Metrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
