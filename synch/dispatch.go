package main

import (
	"context"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// Dispatcher routes employee_exchange's two topics — insurance and
// model — to their respective reconcilers (spec.md §4.5). Synch is the
// only service that fans a single queue out across two reconcilers,
// since it is the one replica interested in both of Employee's
// published entities.
type Dispatcher struct {
	Insurance reconcile.InsuranceReconciler
	Model     reconcile.ModelReconciler
}

func (d Dispatcher) Handle(ctx context.Context, routingKey string, body []byte) error {
	routing, err := events.ParseRoutingKey(routingKey)
	if err != nil {
		return err
	}

	switch routing.Topic {
	case events.TopicInsurance:
		e, err := events.DecodeInsurance(body)
		if err != nil {
			return err
		}
		return d.Insurance.Reconcile(ctx, routing.Action, e)
	case events.TopicModel:
		e, err := events.DecodeModel(body)
		if err != nil {
			return err
		}
		return d.Model.Reconcile(ctx, routing.Action, e)
	default:
		return fmt.Errorf("%w: synch only reconciles insurance/model events off employee_exchange, got topic %q", events.ErrUnknownRouting, routing.Topic)
	}
}
