package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"checkout/internal/checkout/models"
)

// Metrics provides observability for the checkout wizard.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	StepTransitions    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	OrdersPlaced       prometheus.Counter
	OrderTotal         prometheus.Histogram
	ActiveSessions     prometheus.Gauge
}

// New creates the checkout metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_sessions_started_total",
			Help: "Total number of checkout sessions started",
		}),
		StepTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_step_transitions_total",
			Help: "Wizard step changes by origin and destination step",
		}, []string{"from", "to"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_validation_failures_total",
			Help: "Rejected submits by step and offending field",
		}, []string{"step", "field"}),
		OrdersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkout_orders_placed_total",
			Help: "Total number of orders placed from the summary step",
		}),
		OrderTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_order_total_dollars",
			Help:    "Distribution of order totals at placement",
			Buckets: []float64{25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "checkout_sessions_active",
			Help: "Checkout sessions held by the in-process store",
		}),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// ObserveTransition records a step change.
func (m *Metrics) ObserveTransition(from, to models.Step) {
	if m == nil || from == to {
		return
	}
	m.StepTransitions.WithLabelValues(stepLabel(from), stepLabel(to)).Inc()
}

// ObserveValidationFailure records one counter increment per offending field.
func (m *Metrics) ObserveValidationFailure(step models.Step, fields []string) {
	if m == nil {
		return
	}
	for _, field := range fields {
		m.ValidationFailures.WithLabelValues(stepLabel(step), field).Inc()
	}
}

// ObserveOrderPlaced records an order placement and its total.
func (m *Metrics) ObserveOrderPlaced(total float64) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.OrderTotal.Observe(total)
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func stepLabel(s models.Step) string {
	return strings.ToLower(s.String())
}
