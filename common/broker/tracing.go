package broker

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// amqpHeaderCarrier adapts amqp.Table to the
// propagation.TextMapCarrier interface OpenTelemetry expects, since
// AMQP has no native trace-context propagation the way gRPC does
// (common/broker/tracing.go in the teacher repo, completed here: the
// teacher left the otel calls commented out pending an otel import).
type amqpHeaderCarrier amqp.Table

func (c amqpHeaderCarrier) Get(key string) string {
	v, ok := c[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (c amqpHeaderCarrier) Set(key, value string) {
	c[key] = value
}

func (c amqpHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// InjectTraceHeaders carries the active span's trace context into an
// AMQP publish, the transport-level carrier SPEC_FULL.md §4.11 requires
// since this core has no HTTP/gRPC boundary to propagate across.
func InjectTraceHeaders(ctx context.Context) amqp.Table {
	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))
	return headers
}

// ExtractTraceHeaders recovers a trace context from a delivery's
// headers so the consumer's processing span is a child of the
// publisher's span.
func ExtractTraceHeaders(ctx context.Context, headers amqp.Table) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(headers))
}
