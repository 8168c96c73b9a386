package main

import (
	"context"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// Dispatcher reconciles admin_exchange's employee events against
// Employee's own replica (spec.md §4.5). Employee is never the origin
// of employee events — Admin is — so this is structurally identical to
// auth/dispatch.go save for PreserveDeletedOnUpdate.
type Dispatcher struct {
	Reconciler reconcile.EmployeeReconciler
}

func (d Dispatcher) Handle(ctx context.Context, routingKey string, body []byte) error {
	routing, err := events.ParseRoutingKey(routingKey)
	if err != nil {
		return err
	}
	if routing.Topic != events.TopicEmployee {
		return fmt.Errorf("%w: employee service only reconciles employee events off admin_exchange, got topic %q", events.ErrUnknownRouting, routing.Topic)
	}

	e, err := events.DecodeEmployee(body)
	if err != nil {
		return err
	}

	return d.Reconciler.Reconcile(ctx, routing.Action, e)
}
