package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// memEmployeeStore is an in-memory fake satisfying
// reconcile.EmployeeStore, keyed by id.
type memEmployeeStore struct {
	byID map[string]events.EmployeeEvent
}

func newMemEmployeeStore() *memEmployeeStore {
	return &memEmployeeStore{byID: map[string]events.EmployeeEvent{}}
}

func (s *memEmployeeStore) GetByID(ctx context.Context, id string) (events.EmployeeEvent, bool, error) {
	e, ok := s.byID[id]
	return e, ok, nil
}

func (s *memEmployeeStore) GetByEmail(ctx context.Context, email string) (events.EmployeeEvent, bool, error) {
	for _, e := range s.byID {
		if e.Email == email {
			return e, true, nil
		}
	}
	return events.EmployeeEvent{}, false, nil
}

func (s *memEmployeeStore) Upsert(ctx context.Context, e events.EmployeeEvent) error {
	s.byID[e.ID] = e
	return nil
}

func (s *memEmployeeStore) Delete(ctx context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

func (s *memEmployeeStore) SetTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error {
	e, ok := s.byID[id]
	if !ok {
		return errors.New("not found")
	}
	e.IsDeleted = true
	e.UpdatedAt = updatedAt
	s.byID[id] = e
	return nil
}

func (s *memEmployeeStore) ClearTombstone(ctx context.Context, e events.EmployeeEvent) error {
	s.byID[e.ID] = e
	return nil
}

func ts(offsetSeconds int) events.Timestamp {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return events.NewTimestamp(base.Add(time.Duration(offsetSeconds) * time.Second))
}

func employee(id, email string, created, updated events.Timestamp, deleted bool) events.EmployeeEvent {
	return events.EmployeeEvent{
		ID: id, Email: email, HashedPassword: "x", FirstName: "A", LastName: "B",
		Role: events.RoleSalesPerson, IsDeleted: deleted, CreatedAt: created, UpdatedAt: updated,
	}
}

// Scenario 1: out-of-order update before create (spec.md §8 scenario 1).
func TestScenarioUpdateBeforeCreate(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store}
	ctx := context.Background()

	err := r.Reconcile(ctx, events.ActionUpdate, employee("E1", "a@x", ts(0), ts(2), false))
	if err != nil {
		t.Fatalf("update of absent record should repair via apply_upsert, got %v", err)
	}

	err = r.Reconcile(ctx, events.ActionCreate, employee("E1", "a@x", ts(1), ts(1), false))
	if err != nil {
		t.Fatalf("stale create should no-op, got %v", err)
	}

	got, ok, _ := store.GetByID(ctx, "E1")
	if !ok {
		t.Fatal("expected E1 to be present")
	}
	if !got.UpdatedAt.Time.Equal(ts(2).Time) {
		t.Fatalf("expected updated_at=T2, got %v", got.UpdatedAt)
	}
}

// Scenario 2: duplicate create (spec.md §8 scenario 2).
func TestScenarioDuplicateCreate(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store}
	ctx := context.Background()

	e := employee("E1", "a@x", ts(0), ts(0), false)
	if err := r.Reconcile(ctx, events.ActionCreate, e); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := r.Reconcile(ctx, events.ActionCreate, e); err != nil {
		t.Fatalf("duplicate create should ack-no-op, got %v", err)
	}

	if len(store.byID) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(store.byID))
	}
}

// Scenario 3: email swap across two employees (spec.md §8 scenario 3).
func TestScenarioEmailSwap(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store}
	ctx := context.Background()

	mustOK(t, r.Reconcile(ctx, events.ActionCreate, employee("E1", "a@x", ts(1), ts(1), false)))
	mustOK(t, r.Reconcile(ctx, events.ActionUpdate, employee("E1", "b@x", ts(1), ts(2), false)))
	mustOK(t, r.Reconcile(ctx, events.ActionCreate, employee("E2", "a@x", ts(3), ts(3), false)))

	e1, ok1, _ := store.GetByID(ctx, "E1")
	e2, ok2, _ := store.GetByID(ctx, "E2")
	if !ok1 || !ok2 {
		t.Fatal("expected both E1 and E2 present")
	}
	if e1.Email != "b@x" || e1.IsDeleted {
		t.Fatalf("expected E1 live with email b@x, got %+v", e1)
	}
	if e2.Email != "a@x" || e2.IsDeleted {
		t.Fatalf("expected E2 live with email a@x, got %+v", e2)
	}
}

// Scenario 4: delete then late update (spec.md §8 scenario 4).
func TestScenarioDeleteThenLateUpdate(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store}
	ctx := context.Background()

	mustOK(t, r.Reconcile(ctx, events.ActionCreate, employee("E1", "a@x", ts(1), ts(1), false)))
	mustOK(t, r.Reconcile(ctx, events.ActionDelete, employee("E1", "a@x", ts(1), ts(2), false)))

	err := r.Reconcile(ctx, events.ActionUpdate, employee("E1", "a@x", ts(1), ts(0), false))
	if err != nil {
		t.Fatalf("stale late update should no-op (its updated_at is older than the tombstone's), got %v", err)
	}

	got, ok, _ := store.GetByID(ctx, "E1")
	if !ok {
		t.Fatal("expected E1 present")
	}
	if !got.IsDeleted {
		t.Fatal("expected E1 to remain tombstoned")
	}
	if !got.UpdatedAt.Time.Equal(ts(2).Time) {
		t.Fatalf("expected updated_at to remain T2, got %v", got.UpdatedAt)
	}
}

func TestDeleteOfAbsentRecordIsNotFound(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store}
	err := r.Reconcile(context.Background(), events.ActionDelete, employee("E1", "a@x", ts(0), ts(0), false))
	if !errors.Is(err, reconcile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUndeleteConflictingEmailIsUniqueFieldTaken(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store}
	ctx := context.Background()

	mustOK(t, r.Reconcile(ctx, events.ActionCreate, employee("E1", "a@x", ts(1), ts(1), false)))
	mustOK(t, r.Reconcile(ctx, events.ActionCreate, employee("E2", "b@x", ts(1), ts(1), false)))
	mustOK(t, r.Reconcile(ctx, events.ActionDelete, employee("E2", "b@x", ts(1), ts(2), false)))

	err := r.Reconcile(ctx, events.ActionUndelete, employee("E2", "a@x", ts(1), ts(3), false))
	if !errors.Is(err, reconcile.ErrUniqueFieldTaken) {
		t.Fatalf("expected ErrUniqueFieldTaken, got %v", err)
	}
}

func TestEmployeeServicePreservesTombstoneThroughUpdate(t *testing.T) {
	store := newMemEmployeeStore()
	r := reconcile.EmployeeReconciler{Store: store, PreserveDeletedOnUpdate: true}
	ctx := context.Background()

	mustOK(t, r.Reconcile(ctx, events.ActionCreate, employee("E1", "a@x", ts(1), ts(1), false)))
	mustOK(t, r.Reconcile(ctx, events.ActionDelete, employee("E1", "a@x", ts(1), ts(2), false)))

	// A late update (with is_deleted=false in the payload) must not resurrect.
	mustOK(t, r.Reconcile(ctx, events.ActionUpdate, employee("E1", "a@x", ts(1), ts(3), false)))

	got, _, _ := store.GetByID(ctx, "E1")
	if !got.IsDeleted {
		t.Fatal("expected update to preserve the tombstone on the Employee-service replica")
	}
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
