// Package consumer drives the shared consumer-runtime loop every
// service's reconciler runs on top of (spec.md §4.4): declare a durable queue, bind it to the source exchange,
// dispatch each delivery to a Handler, and apply the
// ack/nack-requeue/reject-no-requeue outcome common/reconcile.Classify
// derives from the handler's returned error. Kept apart from
// common/broker on purpose: common/broker is pure transport and does
// not know about reconciliation outcomes, so the dependency on
// common/reconcile lives here instead.
package consumer

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/kea-dealership/event-core/common/broker"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// Handler processes one delivery's routing key and body, returning the
// error reconcile.Classify should act on. A nil error acks the
// delivery.
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Recorder is the subset of common/metrics.BrokerMetrics the loop
// needs, declared locally so this package does not import
// common/metrics for a single method.
type Recorder interface {
	RecordConsume(queue, outcome string)
}

// Run declares queueName (durable), binds it to exchange with a
// catch-all routing key, and dispatches every delivery to handle until
// ctx is cancelled or the delivery channel closes. Grounded on the
// teacher's kitchen/consumer.go and stock/amqp_consumer.go Listen
// loops, generalized from one hardcoded exchange/handler pair to any
// (exchange, queue, Handler) triple and from log.Fatal/log.Printf to
// slog plus returned errors.
func Run(ctx context.Context, bus *broker.Bus, exchange, queueName string, logger *slog.Logger, metrics Recorder, handle Handler) error {
	if _, err := bus.DeclareQueue(queueName, true); err != nil {
		return err
	}
	if err := bus.Bind(queueName, "", exchange); err != nil {
		return err
	}

	deliveries, err := bus.Consume(queueName)
	if err != nil {
		return err
	}

	logger.Info("consumer started", slog.String("queue", queueName), slog.String("exchange", exchange))

	for {
		select {
		case <-ctx.Done():
			logger.Info("consumer stopping", slog.String("queue", queueName))
			return nil
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed", slog.String("queue", queueName))
				return nil
			}
			dispatch(ctx, queueName, logger, metrics, handle, d)
		}
	}
}

func dispatch(ctx context.Context, queueName string, logger *slog.Logger, metrics Recorder, handle Handler, d amqp.Delivery) {
	dctx, span := otel.Tracer("consumer").Start(broker.ExtractTraceHeaders(ctx, d.Headers), "dispatch "+d.RoutingKey)
	defer span.End()

	err := handle(dctx, d.RoutingKey, d.Body)
	outcome := reconcile.Classify(err)

	logFields := []any{
		slog.String("queue", queueName),
		slog.String("routing_key", d.RoutingKey),
		slog.String("outcome", outcome.String()),
	}
	if err != nil {
		logFields = append(logFields, slog.Any("error", err))
	}

	switch outcome {
	case reconcile.OutcomeAck:
		logger.Info("delivery processed", logFields...)
		if ackErr := d.Ack(false); ackErr != nil {
			logger.Error("failed to ack delivery", slog.Any("error", ackErr))
		}
	case reconcile.OutcomeNackRequeue:
		logger.Warn("delivery requeued", logFields...)
		if nackErr := d.Nack(false, true); nackErr != nil {
			logger.Error("failed to nack delivery", slog.Any("error", nackErr))
		}
	case reconcile.OutcomeRejectNoRequeue:
		logger.Error("delivery rejected without requeue", logFields...)
		if rejErr := d.Reject(false); rejErr != nil {
			logger.Error("failed to reject delivery", slog.Any("error", rejErr))
		}
	}

	if metrics != nil {
		metrics.RecordConsume(queueName, outcome.String())
	}
}
