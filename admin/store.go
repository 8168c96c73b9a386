package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kea-dealership/event-core/common/events"
)

// ErrEmployeeNotFound is returned by Store methods that expect an
// existing row and find none.
var ErrEmployeeNotFound = errors.New("employee not found")

// ErrEmailTaken is returned by Service.CreateEmployee/UpdateEmployee
// when email is already held by a different employee row, tombstoned
// rows included.
var ErrEmailTaken = errors.New("email already in use")

// Store is Admin's authoritative MySQL gateway for the employees
// table (spec.md §4.7), grounded on the teacher's
// stock/store_postgres.go query/scan/%w-wrapping shape, adapted to
// go-sql-driver/mysql since spec.md §6.2 names MYSQL_DB_* variables.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetByID(ctx context.Context, id string) (events.EmployeeEvent, error) {
	const query = `SELECT id, email, hashed_password, first_name, last_name, role, is_deleted, created_at, updated_at
	               FROM employees WHERE id = ?`
	return s.scanOne(ctx, query, id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (events.EmployeeEvent, error) {
	const query = `SELECT id, email, hashed_password, first_name, last_name, role, is_deleted, created_at, updated_at
	               FROM employees WHERE email = ?`
	return s.scanOne(ctx, query, email)
}

func (s *Store) scanOne(ctx context.Context, query string, arg any) (events.EmployeeEvent, error) {
	var e events.EmployeeEvent
	var role string
	var createdAt, updatedAt time.Time

	row := s.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(&e.ID, &e.Email, &e.HashedPassword, &e.FirstName, &e.LastName, &role, &e.IsDeleted, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return events.EmployeeEvent{}, ErrEmployeeNotFound
	}
	if err != nil {
		return events.EmployeeEvent{}, fmt.Errorf("failed to scan employee row: %w", err)
	}

	e.Role = events.Role(role)
	e.CreatedAt = events.NewTimestamp(createdAt)
	e.UpdatedAt = events.NewTimestamp(updatedAt)
	return e, nil
}

// Insert creates a new employee row.
func (s *Store) Insert(ctx context.Context, e events.EmployeeEvent) error {
	const query = `INSERT INTO employees (id, email, hashed_password, first_name, last_name, role, is_deleted, created_at, updated_at)
	               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Email, e.HashedPassword, e.FirstName, e.LastName, string(e.Role), e.IsDeleted, e.CreatedAt.Time, e.UpdatedAt.Time)
	if err != nil {
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

// UpdateFields applies a partial field update and advances updated_at.
func (s *Store) UpdateFields(ctx context.Context, e events.EmployeeEvent) error {
	const query = `UPDATE employees SET email = ?, hashed_password = ?, first_name = ?, last_name = ?, role = ?, updated_at = ?
	               WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, e.Email, e.HashedPassword, e.FirstName, e.LastName, string(e.Role), e.UpdatedAt.Time, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return requireRowsAffected(result, ErrEmployeeNotFound)
}

// SetTombstone marks an employee row deleted and advances updated_at,
// preserving every other field (spec.md §4.6.1 tombstone).
func (s *Store) SetTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error {
	const query = `UPDATE employees SET is_deleted = TRUE, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, updatedAt.Time, id)
	if err != nil {
		return fmt.Errorf("failed to tombstone employee: %w", err)
	}
	return requireRowsAffected(result, ErrEmployeeNotFound)
}

// ClearTombstone revives a tombstoned employee row.
func (s *Store) ClearTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error {
	const query = `UPDATE employees SET is_deleted = FALSE, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, updatedAt.Time, id)
	if err != nil {
		return fmt.Errorf("failed to clear employee tombstone: %w", err)
	}
	return requireRowsAffected(result, ErrEmployeeNotFound)
}

func requireRowsAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
