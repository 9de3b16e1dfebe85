package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are safe to call on a nil receiver so services can run without them.
type Metrics struct {
	SuspensionsRecorded  prometheus.Counter
	Terminations         *prometheus.CounterVec
	BlacklistInsertions  *prometheus.CounterVec
	BlacklistExpired     prometheus.Counter
	RegistrationsBlocked *prometheus.CounterVec
	Rejections           prometheus.Counter
	EventDeliveries      *prometheus.CounterVec
	EventsDropped        prometheus.Counter
	SinkCircuitOpen      prometheus.Gauge
	OperationDuration    *prometheus.HistogramVec
}

// New registers lifecycle metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers lifecycle metrics on reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SuspensionsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "caregate_suspensions_recorded_total",
			Help: "Total number of suspension records appended to the ledger",
		}),
		Terminations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caregate_provider_terminations_total",
			Help: "Total number of provider terminations by trigger",
		}, []string{"trigger"}),
		BlacklistInsertions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caregate_blacklist_insertions_total",
			Help: "Total number of blacklist entries created by reason",
		}, []string{"reason"}),
		BlacklistExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "caregate_blacklist_expired_total",
			Help: "Total number of blacklist entries deactivated by expiry cleanup",
		}),
		RegistrationsBlocked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caregate_registrations_blocked_total",
			Help: "Total number of blocked candidate registrations by kind",
		}, []string{"kind"}),
		Rejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "caregate_candidate_rejections_total",
			Help: "Total number of candidate rejections",
		}),
		EventDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "caregate_event_deliveries_total",
			Help: "Total number of outbound lifecycle event deliveries by sink and outcome",
		}, []string{"sink", "outcome"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "caregate_events_dropped_total",
			Help: "Total number of lifecycle events dropped because the buffer was full",
		}),
		SinkCircuitOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "caregate_event_sink_circuit_open",
			Help: "Event sink circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "caregate_lifecycle_operation_duration_ms",
			Help:    "Latency of lifecycle operations in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementSuspensions() {
	if m == nil {
		return
	}
	m.SuspensionsRecorded.Inc()
}

func (m *Metrics) IncrementTerminations(trigger string) {
	if m == nil {
		return
	}
	m.Terminations.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncrementBlacklistInsertions(reason string) {
	if m == nil {
		return
	}
	m.BlacklistInsertions.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddBlacklistExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.BlacklistExpired.Add(float64(n))
}

func (m *Metrics) IncrementRegistrationsBlocked(kind string) {
	if m == nil {
		return
	}
	m.RegistrationsBlocked.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementRejections() {
	if m == nil {
		return
	}
	m.Rejections.Inc()
}

// RecordEventDelivery counts one delivery attempt against sink.
func (m *Metrics) RecordEventDelivery(sink string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EventDeliveries.WithLabelValues(sink, outcome).Inc()
}

func (m *Metrics) IncrementEventsDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

func (m *Metrics) SetSinkCircuitState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.SinkCircuitOpen.Set(1)
	} else {
		m.SinkCircuitOpen.Set(0)
	}
}

// ObserveOperation records the latency of operation since start.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
