package main

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kea-dealership/event-core/common/events"
)

func newMockEmployeeStore(t *testing.T) (*EmployeeStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewEmployeeStore(db), mock
}

// ClearTombstone must touch only is_deleted/updated_at (spec.md §4.6.2
// undelete step 4), never overwrite the row's other columns the way a
// full Upsert would.
func TestEmployeeStoreClearTombstoneIsPartialUpdate(t *testing.T) {
	store, mock := newMockEmployeeStore(t)
	updatedAt := events.NewTimestamp(time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC))

	mock.ExpectExec("UPDATE employees_replica SET is_deleted = FALSE, updated_at = \\? WHERE id = \\?").
		WithArgs(updatedAt.Time, "E1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := events.EmployeeEvent{ID: "E1", UpdatedAt: updatedAt}
	if err := store.ClearTombstone(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeStoreUpsertOverwritesEveryColumn(t *testing.T) {
	store, mock := newMockEmployeeStore(t)
	now := events.NewTimestamp(time.Now())

	mock.ExpectExec("INSERT INTO employees_replica .+ ON DUPLICATE KEY UPDATE email = VALUES\\(email\\), hashed_password = VALUES\\(hashed_password\\), first_name = VALUES\\(first_name\\), last_name = VALUES\\(last_name\\), role = VALUES\\(role\\), is_deleted = VALUES\\(is_deleted\\), created_at = VALUES\\(created_at\\), updated_at = VALUES\\(updated_at\\)").
		WillReturnResult(sqlmock.NewResult(1, 1))

	e := events.EmployeeEvent{
		ID: "E1", Email: "a@b.com", HashedPassword: "h", FirstName: "Ann", LastName: "Admin",
		Role: events.RoleAdmin, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.Upsert(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
