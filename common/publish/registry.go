// Package publish implements the publisher registry of spec.md §4.3:
// one Registry per producing exchange, over a shared broker.Bus, used
// for every routing key of that exchange. Each Publish call names its
// routing key; there is no separate publisher value per key.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kea-dealership/event-core/common/broker"
	"github.com/kea-dealership/event-core/common/metrics"
)

// Registry publishes pre-encoded event bytes to one exchange, tagging
// each publish with its routing key. One Registry per producing
// service (Admin owns admin_exchange; Employee owns
// employee_exchange).
type Registry struct {
	bus      *broker.Bus
	exchange string
	logger   *slog.Logger
	metrics  *metrics.BrokerMetrics
}

// NewRegistry declares exchange as a durable fanout (spec.md §4.2,
// §6.1) and returns a Registry bound to it.
func NewRegistry(bus *broker.Bus, exchange string, logger *slog.Logger, m *metrics.BrokerMetrics) (*Registry, error) {
	if err := bus.DeclareExchange(exchange, "fanout", true); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}
	return &Registry{bus: bus, exchange: exchange, logger: logger, metrics: m}, nil
}

// Publish sends one already-encoded event body after its local commit
// has already succeeded; it does not encode, callers pass the bytes
// from the events Encode* functions (spec.md §4.3 "Publish happens after the local
// commit"). Publish failure is logged and returned to the caller, but
// per the spec it is best-effort: the caller must not reverse the
// local commit on a publish failure, it only logs and lets the next
// mutation or an operator re-publish reconverge the replicas.
func (r *Registry) Publish(ctx context.Context, routingKey string, body []byte) error {
	err := r.bus.Publish(ctx, r.exchange, routingKey, body)
	outcome := "ack"
	if err != nil {
		outcome = "error"
		r.logger.Error("failed to publish event",
			slog.String("exchange", r.exchange),
			slog.String("routing_key", routingKey),
			slog.Any("error", err),
		)
	} else {
		r.logger.Info("published event",
			slog.String("exchange", r.exchange),
			slog.String("routing_key", routingKey),
		)
	}
	if r.metrics != nil {
		r.metrics.RecordPublish(routingKey, outcome)
	}
	return err
}
