package main

import (
	"context"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// Dispatcher implements the routing-key → decode → reconcile pipeline
// of spec.md §4.5: only the employee topic is relevant to Auth, since
// it consumes admin_exchange exclusively.
type Dispatcher struct {
	Reconciler reconcile.EmployeeReconciler
}

func (d Dispatcher) Handle(ctx context.Context, routingKey string, body []byte) error {
	routing, err := events.ParseRoutingKey(routingKey)
	if err != nil {
		return err
	}
	if routing.Topic != events.TopicEmployee {
		return fmt.Errorf("%w: auth only reconciles employee events, got topic %q", events.ErrUnknownRouting, routing.Topic)
	}

	e, err := events.DecodeEmployee(body)
	if err != nil {
		return err
	}

	return d.Reconciler.Reconcile(ctx, routing.Action, e)
}
