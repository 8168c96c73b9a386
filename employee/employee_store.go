package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// EmployeeStore is the Employee service's MySQL gateway onto its own
// employee replica table (spec.md §1, §6.2 — opened with the root
// credentials since this reconciler writes rows the service's own
// catalog business logic never touches). Shape mirrors admin/store.go,
// adapted to satisfy reconcile.EmployeeStore's bool-returning lookups
// instead of admin's not-found-sentinel ones.
type EmployeeStore struct {
	db *sql.DB
}

func NewEmployeeStore(db *sql.DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

var _ reconcile.EmployeeStore = (*EmployeeStore)(nil)

func (s *EmployeeStore) GetByID(ctx context.Context, id string) (events.EmployeeEvent, bool, error) {
	const query = `SELECT id, email, hashed_password, first_name, last_name, role, is_deleted, created_at, updated_at
	               FROM employees_replica WHERE id = ?`
	return s.scanOne(ctx, query, id)
}

func (s *EmployeeStore) GetByEmail(ctx context.Context, email string) (events.EmployeeEvent, bool, error) {
	const query = `SELECT id, email, hashed_password, first_name, last_name, role, is_deleted, created_at, updated_at
	               FROM employees_replica WHERE email = ?`
	return s.scanOne(ctx, query, email)
}

func (s *EmployeeStore) scanOne(ctx context.Context, query string, arg any) (events.EmployeeEvent, bool, error) {
	var e events.EmployeeEvent
	var role string
	var createdAt, updatedAt time.Time

	row := s.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(&e.ID, &e.Email, &e.HashedPassword, &e.FirstName, &e.LastName, &role, &e.IsDeleted, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return events.EmployeeEvent{}, false, nil
	}
	if err != nil {
		return events.EmployeeEvent{}, false, fmt.Errorf("failed to scan employee replica row: %w", err)
	}

	e.Role = events.Role(role)
	e.CreatedAt = events.NewTimestamp(createdAt)
	e.UpdatedAt = events.NewTimestamp(updatedAt)
	return e, true, nil
}

// Upsert inserts or fully overwrites the replica row, the MySQL
// equivalent of Auth's Mongo ReplaceOne-with-upsert.
func (s *EmployeeStore) Upsert(ctx context.Context, e events.EmployeeEvent) error {
	const query = `INSERT INTO employees_replica (id, email, hashed_password, first_name, last_name, role, is_deleted, created_at, updated_at)
	               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	               ON DUPLICATE KEY UPDATE email = VALUES(email), hashed_password = VALUES(hashed_password),
	               first_name = VALUES(first_name), last_name = VALUES(last_name), role = VALUES(role),
	               is_deleted = VALUES(is_deleted), created_at = VALUES(created_at), updated_at = VALUES(updated_at)`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Email, e.HashedPassword, e.FirstName, e.LastName, string(e.Role), e.IsDeleted, e.CreatedAt.Time, e.UpdatedAt.Time)
	if err != nil {
		return fmt.Errorf("failed to upsert employee replica: %w", err)
	}
	return nil
}

func (s *EmployeeStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM employees_replica WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee replica: %w", err)
	}
	return nil
}

func (s *EmployeeStore) SetTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error {
	const query = `UPDATE employees_replica SET is_deleted = TRUE, updated_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, updatedAt.Time, id)
	if err != nil {
		return fmt.Errorf("failed to tombstone employee replica: %w", err)
	}
	return nil
}

func (s *EmployeeStore) ClearTombstone(ctx context.Context, e events.EmployeeEvent) error {
	const query = `UPDATE employees_replica SET is_deleted = FALSE, updated_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, e.UpdatedAt.Time, e.ID)
	if err != nil {
		return fmt.Errorf("failed to clear employee replica tombstone: %w", err)
	}
	return nil
}
