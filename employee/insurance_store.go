package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kea-dealership/event-core/common/events"
)

// ErrInsuranceNotFound is returned by InsuranceStore methods that
// expect an existing row and find none.
var ErrInsuranceNotFound = errors.New("insurance not found")

// ErrInsuranceNameTaken is returned by Insert/UpdateFields when name
// would collide with a different, existing insurance row.
var ErrInsuranceNameTaken = errors.New("insurance name already in use")

// InsuranceStore is Employee's authoritative MySQL gateway for the
// insurances table (spec.md §1, §4.6.3's uniqueness rule enforced here
// directly rather than through the reconciler, since this service is
// the origin of insurance events, not a replica of them). Shape
// mirrors admin/store.go's authoritative-CRUD pattern.
type InsuranceStore struct {
	db *sql.DB
}

func NewInsuranceStore(db *sql.DB) *InsuranceStore {
	return &InsuranceStore{db: db}
}

func (s *InsuranceStore) GetByID(ctx context.Context, id string) (events.InsuranceEvent, error) {
	const query = `SELECT id, name, price, created_at, updated_at FROM insurances WHERE id = ?`
	return s.scanOne(ctx, query, id)
}

func (s *InsuranceStore) GetByName(ctx context.Context, name string) (events.InsuranceEvent, error) {
	const query = `SELECT id, name, price, created_at, updated_at FROM insurances WHERE name = ?`
	return s.scanOne(ctx, query, name)
}

func (s *InsuranceStore) scanOne(ctx context.Context, query string, arg any) (events.InsuranceEvent, error) {
	var e events.InsuranceEvent
	var createdAt, updatedAt time.Time

	row := s.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(&e.ID, &e.Name, &e.Price, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return events.InsuranceEvent{}, ErrInsuranceNotFound
	}
	if err != nil {
		return events.InsuranceEvent{}, fmt.Errorf("failed to scan insurance row: %w", err)
	}

	e.CreatedAt = events.NewTimestamp(createdAt)
	e.UpdatedAt = events.NewTimestamp(updatedAt)
	return e, nil
}

// Insert creates a new insurance row after checking name uniqueness.
func (s *InsuranceStore) Insert(ctx context.Context, e events.InsuranceEvent) error {
	if _, err := s.GetByName(ctx, e.Name); err == nil {
		return ErrInsuranceNameTaken
	} else if !errors.Is(err, ErrInsuranceNotFound) {
		return err
	}

	const query = `INSERT INTO insurances (id, name, price, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Name, e.Price, e.CreatedAt.Time, e.UpdatedAt.Time)
	if err != nil {
		return fmt.Errorf("failed to insert insurance: %w", err)
	}
	return nil
}

// UpdateFields applies a field update and advances updated_at.
func (s *InsuranceStore) UpdateFields(ctx context.Context, e events.InsuranceEvent) error {
	if existing, err := s.GetByName(ctx, e.Name); err == nil && existing.ID != e.ID {
		return ErrInsuranceNameTaken
	} else if err != nil && !errors.Is(err, ErrInsuranceNotFound) {
		return err
	}

	const query = `UPDATE insurances SET name = ?, price = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.ExecContext(ctx, query, e.Name, e.Price, e.UpdatedAt.Time, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update insurance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrInsuranceNotFound
	}
	return nil
}
