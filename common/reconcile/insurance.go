package reconcile

import (
	"context"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
)

// InsuranceStore is the minimal store-gateway surface the insurance
// reconciler needs (spec.md §4.7, §4.6.3). Only Synch hosts one.
type InsuranceStore interface {
	GetByID(ctx context.Context, id string) (events.InsuranceEvent, bool, error)
	GetByName(ctx context.Context, name string) (events.InsuranceEvent, bool, error)
	Upsert(ctx context.Context, e events.InsuranceEvent) error
}

// InsuranceReconciler implements spec.md §4.6.3: create and update
// only, uniqueness on name, no tombstones.
type InsuranceReconciler struct {
	Store InsuranceStore
}

func (r InsuranceReconciler) Reconcile(ctx context.Context, action events.Action, e events.InsuranceEvent) error {
	switch action {
	case events.ActionCreate:
		return r.create(ctx, e)
	case events.ActionUpdate:
		return r.update(ctx, e)
	default:
		return fmt.Errorf("%w: insurance reconciler cannot handle action %q", events.ErrUnknownRouting, action)
	}
}

func (r InsuranceReconciler) create(ctx context.Context, e events.InsuranceEvent) error {
	if err := r.checkNameConflict(ctx, e); err != nil {
		return err
	}

	existing, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if hasR {
		if e.CreatedAt.After(existing.UpdatedAt) {
			return upsertInsuranceOrStoreErr(ctx, r.Store, e)
		}
		return nil
	}
	return upsertInsuranceOrStoreErr(ctx, r.Store, e)
}

func (r InsuranceReconciler) update(ctx context.Context, e events.InsuranceEvent) error {
	if err := r.checkNameConflict(ctx, e); err != nil {
		return err
	}

	existing, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if !hasR {
		return upsertInsuranceOrStoreErr(ctx, r.Store, e) // late update repairs a lost create
	}
	if !IsFresher(e.UpdatedAt, existing.UpdatedAt) {
		return nil
	}
	return upsertInsuranceOrStoreErr(ctx, r.Store, e)
}

func (r InsuranceReconciler) checkNameConflict(ctx context.Context, e events.InsuranceEvent) error {
	u, has, err := r.Store.GetByName(ctx, e.Name)
	if err != nil {
		return storeErr(err)
	}
	if has && u.ID != e.ID {
		return WrapUniqueFieldTaken("name", e.Name)
	}
	return nil
}

func upsertInsuranceOrStoreErr(ctx context.Context, s InsuranceStore, e events.InsuranceEvent) error {
	if err := s.Upsert(ctx, e); err != nil {
		return storeErr(err)
	}
	return nil
}
