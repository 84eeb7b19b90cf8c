// Package metrics exposes domain counters next to the HTTP middleware metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics methods are safe to call on a nil receiver.
type Metrics struct {
	workshopTransitions *prometheus.CounterVec
	registrations       *prometheus.CounterVec
	refunds             *prometheus.CounterVec
	stockAdjustments    prometheus.Counter
	notifications       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		workshopTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_workshop_transitions_total",
			Help: "Workshop status transitions.",
		}, []string{"from", "to"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_registrations_total",
			Help: "Registration status changes.",
		}, []string{"status"}),
		refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_refund_decisions_total",
			Help: "Refund decisions by outcome.",
		}, []string{"outcome"}),
		stockAdjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "club_stock_adjustments_total",
			Help: "Inventory quantity adjustments.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_notifications_enqueued_total",
			Help: "Notification jobs handed to the queue.",
		}, []string{"kind", "result"}),
	}
	for _, c := range []prometheus.Collector{m.workshopTransitions, m.registrations, m.refunds, m.stockAdjustments, m.notifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) WorkshopTransition(from, to string) {
	if m == nil {
		return
	}
	m.workshopTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Registration(status string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(status).Inc()
}

func (m *Metrics) RefundDecision(outcome string) {
	if m == nil {
		return
	}
	m.refunds.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StockAdjusted() {
	if m == nil {
		return
	}
	m.stockAdjustments.Inc()
}

func (m *Metrics) NotificationEnqueued(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}
