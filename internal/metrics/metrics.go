// Package metrics exposes Prometheus collectors for the supervisor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jmgilman/overseer/internal/model"
)

const namespace = "overseer"

// Metrics holds the supervisor's collectors.
//
// Metrics is an events.Sink: subscribing it to the broker derives the event
// and restart counters from the event stream.
type Metrics struct {
	Events          *prometheus.CounterVec
	Restarts        *prometheus.CounterVec
	Instances       *prometheus.GaugeVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	DeliveryErrors  prometheus.Counter
	Sweeps          prometheus.Counter
	SweepDuration   prometheus.Histogram
	Subscribers     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "events_total",
				Help:      "Agent events published, by type and severity",
			},
			[]string{"type", "severity"},
		),
		Restarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "restarts_total",
				Help:      "Instance restarts, by outcome",
			},
			[]string{"outcome"},
		),
		Instances: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "instances",
				Help:      "Registered instances, by status",
			},
			[]string{"status"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "control",
				Name:      "requests_total",
				Help:      "Control protocol requests, by type and result",
			},
			[]string{"type", "result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "control",
				Name:      "request_duration_seconds",
				Help:      "Duration of control protocol requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		DeliveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "delivery_errors_total",
			Help:      "Event deliveries that failed for a subscriber",
		}),
		Sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watchdog",
			Name:      "sweeps_total",
			Help:      "Completed watchdog sweeps",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "watchdog",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of watchdog sweeps in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "control",
			Name:      "stream_subscribers",
			Help:      "Connections subscribed to the agent event stream",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Events, m.Restarts, m.Instances, m.Requests, m.RequestDuration,
			m.DeliveryErrors, m.Sweeps, m.SweepDuration, m.Subscribers,
		)
	}
	return m
}

// Deliver counts ev. It never fails.
func (m *Metrics) Deliver(ev model.AgentEvent) error {
	m.Events.WithLabelValues(ev.Type, string(ev.Severity)).Inc()
	switch ev.Type {
	case model.EventRestartCompleted:
		m.Restarts.WithLabelValues("completed").Inc()
	case model.EventRestartFailed:
		m.Restarts.WithLabelValues("failed").Inc()
	}
	return nil
}

// DeliveryFailed counts a failed event delivery.
func (m *Metrics) DeliveryFailed(model.AgentEvent, error) {
	m.DeliveryErrors.Inc()
}

// ObserveInstances sets the per-status instance gauge from a snapshot.
func (m *Metrics) ObserveInstances(list []model.Instance) {
	counts := map[model.Status]int{
		model.StatusIdle:            0,
		model.StatusRunning:         0,
		model.StatusError:           0,
		model.StatusWaitingApproval: 0,
		model.StatusAuthenticating:  0,
	}
	for _, inst := range list {
		counts[inst.Status]++
	}
	for status, n := range counts {
		m.Instances.WithLabelValues(string(status)).Set(float64(n))
	}
}

// ObserveRequest records a control request outcome.
func (m *Metrics) ObserveRequest(typ string, ok bool, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.Requests.WithLabelValues(typ, result).Inc()
	m.RequestDuration.WithLabelValues(typ).Observe(elapsed.Seconds())
}

// ObserveSweep records a completed watchdog sweep.
func (m *Metrics) ObserveSweep(elapsed time.Duration) {
	m.Sweeps.Inc()
	m.SweepDuration.Observe(elapsed.Seconds())
}

// ObserveSubscribers sets the number of stream subscribers.
func (m *Metrics) ObserveSubscribers(n int) {
	m.Subscribers.Set(float64(n))
}
