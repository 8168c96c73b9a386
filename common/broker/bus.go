// Package broker wraps github.com/rabbitmq/amqp091-go into the single
// "message bus" value spec.md §9 calls for: connect/reconnect, durable
// topology declaration, publish, and consume, injected into the
// publisher registry and consumer runtime of every service instead of
// the teacher's package-level globals.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/kea-dealership/event-core/common/config"
)

// ErrConnectExhausted is returned by Connect when the bounded retry
// loop of spec.md §4.2 gives up.
var ErrConnectExhausted = errors.New("broker connect exhausted retries")

// Bus is a RabbitMQ connection plus one channel. Publish reconnects on
// its own when it finds the channel closed; exchanges, queues and
// bindings are not redeclared after that reconnect, and a delivery
// stream obtained from Consume is not re-established. Every method
// serializes on an internal mutex, so one Bus can serve both a
// service's publisher registry and its consumer loop (Employee's App
// does this).
type Bus struct {
	cfg    config.BrokerConfig
	logger *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

// Connect establishes a durable connection with credentials from
// configuration, retrying on failure with a bounded attempt count and
// a fixed delay between attempts (spec.md §4.2). A heartbeat of zero
// is used so an idle consumer (waiting on an exchange that rarely
// publishes) is never torn down for inactivity.
func Connect(ctx context.Context, cfg config.BrokerConfig, logger *slog.Logger) (*Bus, error) {
	address := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.Username, cfg.Password, cfg.Host, cfg.Port)

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 10
	}
	delay := cfg.ConnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		logger.Info("connecting to rabbitmq",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", retries),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
		)

		conn, err := amqp.DialConfig(address, amqp.Config{
			Heartbeat: 0, // do not tear down the connection for inactivity
		})
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr != nil {
				conn.Close()
				lastErr = fmt.Errorf("failed to open channel: %w", chErr)
			} else {
				logger.Info("rabbitmq connected successfully")
				return &Bus{cfg: cfg, logger: logger, conn: conn, channel: ch}, nil
			}
		} else {
			lastErr = fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}

		logger.Warn("rabbitmq connect attempt failed", slog.Any("error", lastErr))

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrConnectExhausted, lastErr)
}

// reconnect rebuilds the connection and channel in place, used by
// Publish when the channel has gone away mid-process (spec.md §4.2
// "if the channel is closed, transparently reopens via Connect").
func (b *Bus) reconnect(ctx context.Context) error {
	if b.conn != nil {
		b.conn.Close()
	}
	fresh, err := Connect(ctx, b.cfg, b.logger)
	if err != nil {
		return err
	}
	b.conn = fresh.conn
	b.channel = fresh.channel
	return nil
}

// DeclareExchange idempotently declares a durable exchange. Declaring
// the same name with a different kind is a fatal mismatch the broker
// itself reports (spec.md §4.2); that error is returned as-is rather
// than retried, since no amount of reconnection fixes a topology
// conflict.
func (b *Bus) DeclareExchange(name, kind string, durable bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.channel.ExchangeDeclare(name, kind, durable, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %q (kind=%s): %w", name, kind, err)
	}
	b.logger.Info("exchange declared", slog.String("exchange", name), slog.String("kind", kind))
	return nil
}

// DeclareQueue idempotently declares a durable queue and returns it.
func (b *Bus) DeclareQueue(name string, durable bool) (amqp.Queue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, err := b.channel.QueueDeclare(name, durable, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %q: %w", name, err)
	}
	b.logger.Info("queue declared", slog.String("queue", q.Name))
	return q, nil
}

// Bind idempotently binds a queue to an exchange. routingKey is empty
// for fanout exchanges (spec.md §3 "Fanout means every bound queue
// receives every event").
func (b *Bus) Bind(queue, routingKey, exchange string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.channel.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q to exchange %q: %w", queue, exchange, err)
	}
	b.logger.Info("queue bound to exchange", slog.String("queue", queue), slog.String("exchange", exchange))
	return nil
}

// Publish sends body to exchange with the given routing key. If the
// channel is closed, Publish transparently reopens the connection via
// Connect and retries once; a second failure surfaces to the caller
// (spec.md §4.2).
func (b *Bus) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	ctx, span := otel.Tracer("broker").Start(ctx, "publish "+exchange)
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.publishLocked(ctx, exchange, routingKey, body)
	if err == nil {
		return nil
	}
	if !b.channel.IsClosed() && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to publish to %q: %w", exchange, err)
	}

	b.logger.Warn("publish channel closed, reconnecting", slog.String("exchange", exchange))
	if rErr := b.reconnect(ctx); rErr != nil {
		return fmt.Errorf("%w: reconnect failed: %v", ErrBrokerUnavailable, rErr)
	}
	if err := b.publishLocked(ctx, exchange, routingKey, body); err != nil {
		return fmt.Errorf("failed to publish to %q after reconnect: %w", exchange, err)
	}
	return nil
}

func (b *Bus) publishLocked(ctx context.Context, exchange, routingKey string, body []byte) error {
	return b.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Headers:      InjectTraceHeaders(ctx),
	})
}

// Consume registers a per-message delivery stream for queue. Callers
// drive the per-message ack/nack-requeue/reject-no-requeue decision
// themselves via the returned amqp.Delivery — see common/reconcile for
// the shared outcome-classification policy that decides which.
func (b *Bus) Consume(queue string) (<-chan amqp.Delivery, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs, err := b.channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer on queue %q: %w", queue, err)
	}
	return msgs, nil
}

// Close closes the channel then the connection, in that order.
// Idempotent (spec.md §4.2).
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.channel != nil {
		if err := b.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	return nil
}

// ErrBrokerUnavailable mirrors common/reconcile.ErrBrokerUnavailable
// for callers that only import common/broker. Kept as a distinct
// sentinel (rather than importing common/reconcile here) to avoid a
// dependency from the transport layer onto the reconciliation policy
// layer. reconcile.Classify does not match this sentinel; an error
// wrapping it falls to Classify's default case, which is also
// nack-requeue.
var ErrBrokerUnavailable = errors.New("broker unavailable")
