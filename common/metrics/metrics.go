// Package metrics exposes the Prometheus counters this core's broker
// and reconcilers emit (SPEC_FULL.md §4.10), following the teacher's
// per-concern metrics-struct shape (HTTPMetrics/GRPCMetrics/
// BusinessMetrics in the original), repurposed for a broker-only
// domain with no HTTP or gRPC surface to instrument.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BrokerMetrics counts publish and consume outcomes for one service.
type BrokerMetrics struct {
	Published *prometheus.CounterVec
	Consumed  *prometheus.CounterVec
}

// NewBrokerMetrics creates broker metrics scoped to serviceName.
func NewBrokerMetrics(serviceName string) *BrokerMetrics {
	return &BrokerMetrics{
		Published: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_broker_messages_published_total",
				Help: "Total number of messages published, by routing key and outcome",
			},
			[]string{"routing_key", "outcome"},
		),
		Consumed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_broker_messages_consumed_total",
				Help: "Total number of messages consumed, by queue and ack outcome",
			},
			[]string{"queue", "outcome"},
		),
	}
}

// RecordPublish records the outcome of a single publish attempt.
func (m *BrokerMetrics) RecordPublish(routingKey, outcome string) {
	m.Published.WithLabelValues(routingKey, outcome).Inc()
}

// RecordConsume records the ack/nack/reject outcome of a single delivery.
func (m *BrokerMetrics) RecordConsume(queue, outcome string) {
	m.Consumed.WithLabelValues(queue, outcome).Inc()
}

// ReconcilerMetrics counts reconciler outcomes per entity/action.
type ReconcilerMetrics struct {
	Outcomes *prometheus.CounterVec
}

// NewReconcilerMetrics creates reconciler metrics scoped to serviceName.
func NewReconcilerMetrics(serviceName string) *ReconcilerMetrics {
	return &ReconcilerMetrics{
		Outcomes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: serviceName + "_reconciler_outcomes_total",
				Help: "Total reconciler outcomes, by entity, action and outcome",
			},
			[]string{"entity", "action", "outcome"},
		),
	}
}

// RecordOutcome records one reconcile attempt's result.
func (m *ReconcilerMetrics) RecordOutcome(entity, action, outcome string) {
	m.Outcomes.WithLabelValues(entity, action, outcome).Inc()
}
