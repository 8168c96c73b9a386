package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/publish"
)

// Service is Admin's authoritative employee business layer: every
// method commits to MySQL first, then best-effort publishes the
// resulting event (spec.md §4.3 "Publish happens after the local
// commit has succeeded; ... failure is logged but does not reverse
// the local commit").
type Service struct {
	store    *Store
	registry *publish.Registry
	logger   *slog.Logger
}

func NewService(store *Store, registry *publish.Registry, logger *slog.Logger) *Service {
	return &Service{store: store, registry: registry, logger: logger}
}

// CreateEmployee inserts a new authoritative employee row and
// publishes employee.created.
func (s *Service) CreateEmployee(ctx context.Context, email, hashedPassword, firstName, lastName string, role events.Role) (events.EmployeeEvent, error) {
	now := events.NewTimestamp(time.Now())
	e := events.EmployeeEvent{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           role,
		IsDeleted:      false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.Validate(); err != nil {
		return events.EmployeeEvent{}, err
	}
	if other, err := s.store.GetByEmail(ctx, e.Email); err == nil && other.ID != e.ID {
		return events.EmployeeEvent{}, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return events.EmployeeEvent{}, err
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return events.EmployeeEvent{}, err
	}
	s.publish(ctx, "employee.created", e)
	return e, nil
}

// UpdateEmployee applies a field update to an existing employee row
// and publishes employee.updated.
func (s *Service) UpdateEmployee(ctx context.Context, id, email, hashedPassword, firstName, lastName string, role events.Role) (events.EmployeeEvent, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return events.EmployeeEvent{}, err
	}

	existing.Email = email
	existing.HashedPassword = hashedPassword
	existing.FirstName = firstName
	existing.LastName = lastName
	existing.Role = role
	existing.UpdatedAt = events.NewTimestamp(time.Now())

	if err := existing.Validate(); err != nil {
		return events.EmployeeEvent{}, err
	}
	if other, err := s.store.GetByEmail(ctx, existing.Email); err == nil && other.ID != existing.ID {
		return events.EmployeeEvent{}, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return events.EmployeeEvent{}, err
	}
	if err := s.store.UpdateFields(ctx, existing); err != nil {
		return events.EmployeeEvent{}, err
	}
	s.publish(ctx, "employee.updated", existing)
	return existing, nil
}

// DeleteEmployee tombstones an employee row and publishes
// employee.deleted.
func (s *Service) DeleteEmployee(ctx context.Context, id string) (events.EmployeeEvent, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return events.EmployeeEvent{}, err
	}

	updatedAt := events.NewTimestamp(time.Now())
	if err := s.store.SetTombstone(ctx, id, updatedAt); err != nil {
		return events.EmployeeEvent{}, err
	}

	existing.IsDeleted = true
	existing.UpdatedAt = updatedAt
	s.publish(ctx, "employee.deleted", existing)
	return existing, nil
}

// UndeleteEmployee clears a tombstone and publishes employee.undeleted.
func (s *Service) UndeleteEmployee(ctx context.Context, id string) (events.EmployeeEvent, error) {
	updatedAt := events.NewTimestamp(time.Now())
	if err := s.store.ClearTombstone(ctx, id, updatedAt); err != nil {
		return events.EmployeeEvent{}, err
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return events.EmployeeEvent{}, err
	}
	s.publish(ctx, "employee.undeleted", existing)
	return existing, nil
}

// GetEmployee is a local authoritative read, never mutates state.
func (s *Service) GetEmployee(ctx context.Context, id string) (events.EmployeeEvent, error) {
	return s.store.GetByID(ctx, id)
}

// publish best-effort-publishes e under routingKey. A publish failure
// is logged only — the local commit above has already succeeded and
// must not be reversed (spec.md §4.3).
func (s *Service) publish(ctx context.Context, routingKey string, e events.EmployeeEvent) {
	body, err := events.EncodeEmployee(e)
	if err != nil {
		s.logger.Error("failed to encode employee event", slog.String("routing_key", routingKey), slog.Any("error", err))
		return
	}
	_ = s.registry.Publish(ctx, routingKey, body)
}
