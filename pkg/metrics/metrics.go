// Package metrics implements Prometheus metrics for the provisioning pipeline.
//
// All collectors live on a Metrics value registered against a caller-supplied
// registerer. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "smartcfg"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	intakePayloads   *prometheus.CounterVec
	joinAttempts     *prometheus.CounterVec
	joinDuration     prometheus.Histogram
	connectAttempts  *prometheus.CounterVec
	reports          *prometheus.CounterVec
	teardowns        prometheus.Counter
	sessionsLost     prometheus.Counter
	provisionState   prometheus.Gauge
	clientsAttached  prometheus.Gauge
	provisionedTotal prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		intakePayloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "intake",
				Name:      "payloads_total",
				Help:      "Total number of payloads run through intake by result",
			},
			[]string{"result"},
		),
		joinAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "join",
				Name:      "attempts_total",
				Help:      "Total number of network join attempts by outcome",
			},
			[]string{"outcome"},
		),
		joinDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "join",
				Name:      "duration_seconds",
				Help:      "Time spent waiting for association per attempt",
				Buckets:   prometheus.LinearBuckets(1, 2, 8), // 1s to 15s
			},
		),
		connectAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uplink",
				Name:      "connect_attempts_total",
				Help:      "Total number of broker connection attempts by result",
			},
			[]string{"result"},
		),
		reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uplink",
				Name:      "reports_total",
				Help:      "Total number of confirmation publishes by result",
			},
			[]string{"result"},
		),
		teardowns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uplink",
				Name:      "teardowns_total",
				Help:      "Total number of idle uplink teardowns",
			},
		),
		sessionsLost: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uplink",
				Name:      "sessions_lost_total",
				Help:      "Total number of broker sessions lost without a local close",
			},
		),
		provisionState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "provision",
				Name:      "state",
				Help:      "Current provisioning state (0=disconnected, 1=awaiting_payload, 2=provisioning, 3=idle)",
			},
		),
		clientsAttached: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "link",
				Name:      "clients_attached",
				Help:      "Whether a short-range client is attached (1) or not (0)",
			},
		),
		provisionedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provision",
				Name:      "completed_total",
				Help:      "Total number of completed provisioning cycles",
			},
		),
	}

	reg.MustRegister(
		m.intakePayloads,
		m.joinAttempts,
		m.joinDuration,
		m.connectAttempts,
		m.reports,
		m.teardowns,
		m.sessionsLost,
		m.provisionState,
		m.clientsAttached,
		m.provisionedTotal,
	)

	return m
}

// ObservePayload counts one intake result (e.g. "accepted").
func (m *Metrics) ObservePayload(result string) {
	if m == nil {
		return
	}
	m.intakePayloads.WithLabelValues(result).Inc()
}

// ObserveJoinAttempt counts one join attempt and its wait time.
func (m *Metrics) ObserveJoinAttempt(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.joinAttempts.WithLabelValues(outcome).Inc()
	m.joinDuration.Observe(elapsed.Seconds())
}

// ObserveConnectAttempt counts one broker connection attempt.
func (m *Metrics) ObserveConnectAttempt(err error) {
	if m == nil {
		return
	}
	m.connectAttempts.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveReport counts one confirmation publish.
func (m *Metrics) ObserveReport(err error) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveTeardown counts one idle uplink teardown.
func (m *Metrics) ObserveTeardown() {
	if m == nil {
		return
	}
	m.teardowns.Inc()
}

// ObserveSessionLost counts one broker session that dropped on its own.
func (m *Metrics) ObserveSessionLost() {
	if m == nil {
		return
	}
	m.sessionsLost.Inc()
}

// ObserveProvisioned counts one completed provisioning cycle.
func (m *Metrics) ObserveProvisioned() {
	if m == nil {
		return
	}
	m.provisionedTotal.Inc()
}

// SetState records the provisioning state as its numeric value.
func (m *Metrics) SetState(state uint8) {
	if m == nil {
		return
	}
	m.provisionState.Set(float64(state))
}

// SetAttached records client presence.
func (m *Metrics) SetAttached(attached bool) {
	if m == nil {
		return
	}
	if attached {
		m.clientsAttached.Set(1)
	} else {
		m.clientsAttached.Set(0)
	}
}

func resultLabel(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
