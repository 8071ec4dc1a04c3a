// Package metrics exposes Prometheus metrics for live sessions and the
// registration flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hammeet"

// Metrics holds all application metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	// Connections
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter

	// Messages
	messagesReceived *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec

	// Renders
	renderDuration prometheus.Histogram
	diffSize       prometheus.Histogram

	errorsTotal *prometheus.CounterVec

	// Registration flow
	wizardTransitions  *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	paymentsTotal      *prometheus.CounterVec
	paymentDuration    prometheus.Histogram
}

// New creates a metrics set registered on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "connections_active",
			Help:      "Number of open live connections",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "connections_total",
			Help:      "Total live connections established",
		}),
		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "messages_received_total",
			Help:      "Messages received from clients by event",
		}, []string{"event"}),
		eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "event_duration_seconds",
			Help:      "Time spent handling a client event, including the re-render",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}, []string{"event"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "render_duration_seconds",
			Help:      "Component render duration",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		diffSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "diff_size_bytes",
			Help:      "Size of diffs pushed to clients",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "errors_total",
			Help:      "Errors by kind",
		}, []string{"kind"}),
		wizardTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "transitions_total",
			Help:      "Wizard state transitions",
		}, []string{"from", "to"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "validation_failures_total",
			Help:      "Rejected submissions by field",
		}, []string{"field"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "attempts_total",
			Help:      "Payment attempts by result",
		}, []string{"result"}),
		paymentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "duration_seconds",
			Help:      "Gateway round trip duration",
			Buckets:   prometheus.LinearBuckets(0.5, 0.5, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connectionsActive,
		m.connectionsTotal,
		m.messagesReceived,
		m.eventDuration,
		m.renderDuration,
		m.diffSize,
		m.errorsTotal,
		m.wizardTransitions,
		m.validationFailures,
		m.paymentsTotal,
		m.paymentDuration,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ConnectionOpened records a new live connection.
func (m *Metrics) ConnectionOpened() {
	m.connectionsTotal.Inc()
	m.connectionsActive.Inc()
}

// ConnectionClosed records a closed live connection.
func (m *Metrics) ConnectionClosed() {
	m.connectionsActive.Dec()
}

// EventHandled records a client event and how long it took.
func (m *Metrics) EventHandled(event string, d time.Duration) {
	m.messagesReceived.WithLabelValues(event).Inc()
	m.eventDuration.WithLabelValues(event).Observe(d.Seconds())
}

// RecordRender records a render and the resulting diff size.
func (m *Metrics) RecordRender(d time.Duration, diffSize int) {
	m.renderDuration.Observe(d.Seconds())
	if diffSize > 0 {
		m.diffSize.Observe(float64(diffSize))
	}
}

// RecordError counts an error of the given kind.
func (m *Metrics) RecordError(kind string) {
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// WizardTransition counts a state change.
func (m *Metrics) WizardTransition(from, to string) {
	m.wizardTransitions.WithLabelValues(from, to).Inc()
}

// ValidationFailed counts a rejected field on submit.
func (m *Metrics) ValidationFailed(field string) {
	m.validationFailures.WithLabelValues(field).Inc()
}

// PaymentCompleted records a finished payment attempt. result is one of
// "success", "failure" or "cancelled".
func (m *Metrics) PaymentCompleted(result string, d time.Duration) {
	m.paymentsTotal.WithLabelValues(result).Inc()
	if d > 0 {
		m.paymentDuration.Observe(d.Seconds())
	}
}
