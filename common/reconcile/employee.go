package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
)

// EmployeeStore is the minimal set of store-gateway primitives the
// employee reconciler needs (spec.md §4.7). Both Auth (MongoDB) and
// Employee (MySQL) implement it against their own store, so the
// single algorithm below runs identically on either replica — spec.md
// §4.6.2 explicitly states "both Auth and Employee service host one".
type EmployeeStore interface {
	GetByID(ctx context.Context, id string) (events.EmployeeEvent, bool, error)
	GetByEmail(ctx context.Context, email string) (events.EmployeeEvent, bool, error)
	Upsert(ctx context.Context, e events.EmployeeEvent) error
	Delete(ctx context.Context, id string) error
	SetTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error
	ClearTombstone(ctx context.Context, e events.EmployeeEvent) error
}

// PreserveDeletedOnUpdate controls whether an update event's
// is_deleted field is honored or ignored in favor of the stored
// record's own tombstone state. The Employee-service replica
// preserves R's is_deleted through updates (spec.md §4.6.2 point 4);
// Auth's replica has no such carve-out in the spec and applies the
// event's is_deleted as given.
type EmployeeReconciler struct {
	Store                   EmployeeStore
	PreserveDeletedOnUpdate bool
}

// Reconcile applies one employee event under action to the store,
// implementing the shared create/update/delete/undelete algorithm of
// spec.md §4.6.2.
func (r EmployeeReconciler) Reconcile(ctx context.Context, action events.Action, e events.EmployeeEvent) error {
	switch action {
	case events.ActionCreate:
		return r.create(ctx, e)
	case events.ActionUpdate:
		return r.update(ctx, e)
	case events.ActionDelete:
		return r.delete(ctx, e)
	case events.ActionUndelete:
		return r.undelete(ctx, e)
	default:
		return fmt.Errorf("%w: employee reconciler cannot handle action %q", events.ErrUnknownRouting, action)
	}
}

// create implements spec.md §4.6.2 create(E).
func (r EmployeeReconciler) create(ctx context.Context, e events.EmployeeEvent) error {
	u, hasU, err := r.conflictingByEmail(ctx, e)
	if err != nil {
		return err
	}
	if hasU {
		if e.CreatedAt.After(u.UpdatedAt) {
			if err := r.Store.Delete(ctx, u.ID); err != nil {
				return storeErr(err)
			}
			return upsertOrStoreErr(ctx, r.Store, e)
		}
		return WrapUniqueFieldTaken("email", e.Email)
	}

	existing, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if hasR {
		if e.CreatedAt.After(existing.UpdatedAt) {
			return upsertOrStoreErr(ctx, r.Store, e)
		}
		return nil // duplicate / stale create: no-op
	}

	return upsertOrStoreErr(ctx, r.Store, e)
}

// update implements spec.md §4.6.2 update(E).
func (r EmployeeReconciler) update(ctx context.Context, e events.EmployeeEvent) error {
	u, hasU, err := r.conflictingByEmail(ctx, e)
	if err != nil {
		return err
	}
	if hasU {
		if IsFresher(e.UpdatedAt, u.UpdatedAt) {
			if err := r.Store.Delete(ctx, u.ID); err != nil {
				return storeErr(err)
			}
			return upsertOrStoreErr(ctx, r.Store, e)
		}
		return WrapUniqueFieldTaken("email", e.Email)
	}

	existing, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if !hasR {
		return upsertOrStoreErr(ctx, r.Store, e) // late update repairs a lost create
	}
	if !IsFresher(e.UpdatedAt, existing.UpdatedAt) {
		return nil
	}

	if r.PreserveDeletedOnUpdate {
		e.IsDeleted = existing.IsDeleted
	}
	return upsertOrStoreErr(ctx, r.Store, e)
}

// delete implements spec.md §4.6.2 delete(E).
func (r EmployeeReconciler) delete(ctx context.Context, e events.EmployeeEvent) error {
	existing, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if !hasR {
		return WrapNotFound("employee", e.ID)
	}
	if existing.IsDeleted {
		if IsFresher(e.UpdatedAt, existing.UpdatedAt) {
			if err := r.Store.SetTombstone(ctx, e.ID, e.UpdatedAt); err != nil {
				return storeErr(err)
			}
			return nil
		}
		return WrapAlreadyInDesiredState("employee already tombstoned with a newer or equal timestamp")
	}
	if err := r.Store.SetTombstone(ctx, e.ID, e.UpdatedAt); err != nil {
		return storeErr(err)
	}
	return nil
}

// undelete implements spec.md §4.6.2 undelete(E).
func (r EmployeeReconciler) undelete(ctx context.Context, e events.EmployeeEvent) error {
	u, hasU, err := r.conflictingByEmail(ctx, e)
	if err != nil {
		return err
	}
	if hasU {
		return WrapUniqueFieldTaken("email", e.Email)
	}

	existing, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if !hasR {
		e.IsDeleted = false
		return upsertOrStoreErr(ctx, r.Store, e)
	}
	if !existing.IsDeleted {
		if IsFresher(e.UpdatedAt, existing.UpdatedAt) {
			e.IsDeleted = false
			return upsertOrStoreErr(ctx, r.Store, e)
		}
		return WrapAlreadyInDesiredState("employee already live with a newer or equal timestamp")
	}

	return storeErrOnly(r.Store.ClearTombstone(ctx, e))
}

// conflictingByEmail returns the record holding e.Email under a
// different id, if any — the "U" of spec.md §4.6.1.
func (r EmployeeReconciler) conflictingByEmail(ctx context.Context, e events.EmployeeEvent) (events.EmployeeEvent, bool, error) {
	u, has, err := r.Store.GetByEmail(ctx, e.Email)
	if err != nil {
		return events.EmployeeEvent{}, false, storeErr(err)
	}
	if has && u.ID != e.ID {
		return u, true, nil
	}
	return events.EmployeeEvent{}, false, nil
}

func upsertOrStoreErr(ctx context.Context, s EmployeeStore, e events.EmployeeEvent) error {
	if err := s.Upsert(ctx, e); err != nil {
		return storeErr(err)
	}
	return nil
}

func storeErrOnly(err error) error {
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// storeErr wraps an underlying store-gateway failure as
// ErrStoreUnavailable, the transient/reconnect class of spec.md §7,
// unless it is already one of this package's typed sentinels.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrUniqueFieldTaken, ErrMissingForeignID, ErrAlreadyInDesiredState, ErrNotFound, ErrStoreUnavailable, ErrBrokerUnavailable} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
