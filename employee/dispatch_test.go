package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// memStore is an in-memory fake satisfying reconcile.EmployeeStore,
// used to exercise Dispatcher without a live MySQL replica.
type memStore struct {
	byID map[string]events.EmployeeEvent
}

func newMemStore() *memStore { return &memStore{byID: map[string]events.EmployeeEvent{}} }

func (s *memStore) GetByID(ctx context.Context, id string) (events.EmployeeEvent, bool, error) {
	e, ok := s.byID[id]
	return e, ok, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (events.EmployeeEvent, bool, error) {
	for _, e := range s.byID {
		if e.Email == email {
			return e, true, nil
		}
	}
	return events.EmployeeEvent{}, false, nil
}

func (s *memStore) Upsert(ctx context.Context, e events.EmployeeEvent) error {
	s.byID[e.ID] = e
	return nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

func (s *memStore) SetTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error {
	e, ok := s.byID[id]
	if !ok {
		return errors.New("not found")
	}
	e.IsDeleted = true
	e.UpdatedAt = updatedAt
	s.byID[id] = e
	return nil
}

func (s *memStore) ClearTombstone(ctx context.Context, e events.EmployeeEvent) error {
	existing, ok := s.byID[e.ID]
	if !ok {
		return errors.New("not found")
	}
	existing.IsDeleted = false
	existing.UpdatedAt = e.UpdatedAt
	s.byID[e.ID] = existing
	return nil
}

func ts(offsetSeconds int) events.Timestamp {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return events.NewTimestamp(base.Add(time.Duration(offsetSeconds) * time.Second))
}

func employeeBody(t *testing.T, id, email string, created, updated events.Timestamp, deleted bool) []byte {
	t.Helper()
	e := events.EmployeeEvent{
		ID: id, Email: email, HashedPassword: "x", FirstName: "A", LastName: "B",
		Role: events.RoleSalesPerson, IsDeleted: deleted, CreatedAt: created, UpdatedAt: updated,
	}
	body, err := events.EncodeEmployee(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return body
}

// Unlike Auth, Employee's replica preserves a tombstone through a late
// update (spec.md §4.6.2 point 4) — this is the one behavioral
// difference from auth/dispatch_test.go worth covering here.
func TestDispatchPreservesTombstoneThroughLateUpdate(t *testing.T) {
	store := newMemStore()
	d := Dispatcher{
		Reconciler: reconcile.EmployeeReconciler{Store: store, PreserveDeletedOnUpdate: true},
	}
	ctx := context.Background()

	if err := d.Handle(ctx, "employee.created", employeeBody(t, "E1", "a@x", ts(1), ts(1), false)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := d.Handle(ctx, "employee.deleted", employeeBody(t, "E1", "a@x", ts(1), ts(2), false)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := d.Handle(ctx, "employee.updated", employeeBody(t, "E1", "a@x", ts(1), ts(3), false)); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, ok, _ := store.GetByID(ctx, "E1")
	if !ok {
		t.Fatal("expected E1 present")
	}
	if !got.IsDeleted {
		t.Fatal("expected update to preserve the tombstone on Employee's replica")
	}
}

func TestDispatchRejectsNonEmployeeTopic(t *testing.T) {
	store := newMemStore()
	d := Dispatcher{Reconciler: reconcile.EmployeeReconciler{Store: store}}

	err := d.Handle(context.Background(), "model.created", []byte(`{}`))
	if !errors.Is(err, events.ErrUnknownRouting) {
		t.Fatalf("expected ErrUnknownRouting for a non-employee topic, got %v", err)
	}
}
