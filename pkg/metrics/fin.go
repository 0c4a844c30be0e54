package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label constants for FIN metrics.
const (
	LabelKind = "kind"
	LabelType = "type"
	LabelMode = "mode"
)

// FINMetrics provides Prometheus metrics for the FIN listener: connection
// lifecycle, message/response volume, sequence gaps, trailer failures and
// injected faults. All methods are nil-safe: calls on a nil *FINMetrics
// are no-ops, so the adapter can run with metrics disabled at zero cost.
type FINMetrics struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	forceClosedTotal  prometheus.Counter

	messagesTotal  *prometheus.CounterVec
	responsesTotal *prometheus.CounterVec

	sequenceGaps    prometheus.Counter
	trailerFailures prometheus.Counter
	faultsInjected  *prometheus.CounterVec

	messageDuration prometheus.Histogram
}

// NewFINMetrics creates and registers FIN metrics with the given
// Prometheus registerer. If reg is nil, metrics are created but not
// registered (useful for testing).
func NewFINMetrics(reg prometheus.Registerer) *FINMetrics {
	m := &FINMetrics{
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "connections_active",
			Help:      "Number of currently open FIN client connections",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "connections_total",
			Help:      "Total number of FIN client connections accepted",
		}),
		forceClosedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "connections_force_closed_total",
			Help:      "Total number of FIN connections force-closed during shutdown",
		}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "messages_total",
			Help:      "Total number of inbound FIN messages by kind",
		}, []string{LabelKind}),
		responsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "responses_total",
			Help:      "Total number of emitted responses by type",
		}, []string{LabelType}),
		sequenceGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "sequence_gaps_total",
			Help:      "Total number of sequence gaps answered with a Resend Request",
		}),
		trailerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "trailer_failures_total",
			Help:      "Total number of inbound messages failing trailer validation",
		}),
		faultsInjected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "faults_injected_total",
			Help:      "Total number of fault-injection events fired by mode",
		}, []string{LabelMode}),
		messageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "finmock",
			Subsystem: "fin",
			Name:      "message_duration_seconds",
			Help:      "Time spent handling one inbound message, including injected delays",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.connectionsActive,
			m.connectionsTotal,
			m.forceClosedTotal,
			m.messagesTotal,
			m.responsesTotal,
			m.sequenceGaps,
			m.trailerFailures,
			m.faultsInjected,
			m.messageDuration,
		)
	}

	return m
}

// RecordConnectionAccepted records an accepted FIN connection.
func (m *FINMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsActive.Inc()
	m.connectionsTotal.Inc()
}

// RecordConnectionClosed records a closed FIN connection.
func (m *FINMetrics) RecordConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

// RecordConnectionForceClosed records a connection torn down by shutdown.
func (m *FINMetrics) RecordConnectionForceClosed() {
	if m == nil {
		return
	}
	m.forceClosedTotal.Inc()
}

// ObserveMessage counts one inbound message of the given kind.
func (m *FINMetrics) ObserveMessage(kind string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(strings.ToLower(kind)).Inc()
}

// ObserveResponse counts one emitted response of the given type.
func (m *FINMetrics) ObserveResponse(responseType string) {
	if m == nil {
		return
	}
	m.responsesTotal.WithLabelValues(strings.ToLower(responseType)).Inc()
}

// ObserveSequenceGap counts a gap answered with a Resend Request.
func (m *FINMetrics) ObserveSequenceGap() {
	if m == nil {
		return
	}
	m.sequenceGaps.Inc()
}

// ObserveTrailerFailure counts a failed trailer validation.
func (m *FINMetrics) ObserveTrailerFailure() {
	if m == nil {
		return
	}
	m.trailerFailures.Inc()
}

// ObserveFault counts a fired fault-injection event by mode.
func (m *FINMetrics) ObserveFault(mode string) {
	if m == nil {
		return
	}
	m.faultsInjected.WithLabelValues(mode).Inc()
}

// ObserveMessageDuration records how long one message took to handle.
func (m *FINMetrics) ObserveMessageDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.messageDuration.Observe(d.Seconds())
}
