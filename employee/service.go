package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/publish"
)

// ErrMissingBrand and ErrMissingColor are returned by CreateModel when
// a referenced id does not exist locally. Unlike the replica-side
// reconciler (which requeues on the same situation, since the
// referenced create may still be in flight over the broker), Employee
// is the authoritative source and has no upstream to wait on: a
// missing reference here is a genuine caller error.
var (
	ErrMissingBrand = fmt.Errorf("brand not found")
	ErrMissingColor = fmt.Errorf("color not found")
)

// Service is Employee's authoritative catalog business layer: every
// mutation commits to MySQL first, then best-effort publishes to
// employee_exchange (spec.md §4.3), the same commit-then-publish shape
// as admin/service.go's employee CRUD.
type Service struct {
	insurances *InsuranceStore
	models     *ModelStore
	brands     *BrandStore
	colors     *ColorStore
	registry   *publish.Registry
	logger     *slog.Logger
}

func NewService(insurances *InsuranceStore, models *ModelStore, brands *BrandStore, colors *ColorStore, registry *publish.Registry, logger *slog.Logger) *Service {
	return &Service{insurances: insurances, models: models, brands: brands, colors: colors, registry: registry, logger: logger}
}

// CreateInsurance inserts a new insurance row and publishes
// insurance.created.
func (s *Service) CreateInsurance(ctx context.Context, name string, price float64) (events.InsuranceEvent, error) {
	now := events.NewTimestamp(time.Now())
	e := events.InsuranceEvent{ID: uuid.NewString(), Name: name, Price: price, CreatedAt: now, UpdatedAt: now}
	if err := e.Validate(); err != nil {
		return events.InsuranceEvent{}, err
	}
	if err := s.insurances.Insert(ctx, e); err != nil {
		return events.InsuranceEvent{}, err
	}
	s.publishInsurance(ctx, "insurance.created", e)
	return e, nil
}

// UpdateInsurance applies a field update and publishes
// insurance.updated.
func (s *Service) UpdateInsurance(ctx context.Context, id, name string, price float64) (events.InsuranceEvent, error) {
	existing, err := s.insurances.GetByID(ctx, id)
	if err != nil {
		return events.InsuranceEvent{}, err
	}
	existing.Name = name
	existing.Price = price
	existing.UpdatedAt = events.NewTimestamp(time.Now())

	if err := existing.Validate(); err != nil {
		return events.InsuranceEvent{}, err
	}
	if err := s.insurances.UpdateFields(ctx, existing); err != nil {
		return events.InsuranceEvent{}, err
	}
	s.publishInsurance(ctx, "insurance.updated", existing)
	return existing, nil
}

// CreateModel validates the brand and every color id exist locally,
// inserts the model row, and publishes model.created. spec.md §9
// confirms model update/delete are intentionally absent.
func (s *Service) CreateModel(ctx context.Context, name string, price float64, imageURL, brandID string, colorIDs []string) (events.ModelEvent, error) {
	if _, has, err := s.brands.GetByID(ctx, brandID); err != nil {
		return events.ModelEvent{}, err
	} else if !has {
		return events.ModelEvent{}, ErrMissingBrand
	}
	for _, colorID := range colorIDs {
		if _, has, err := s.colors.GetByID(ctx, colorID); err != nil {
			return events.ModelEvent{}, err
		} else if !has {
			return events.ModelEvent{}, ErrMissingColor
		}
	}

	now := events.NewTimestamp(time.Now())
	e := events.ModelEvent{
		ID: uuid.NewString(), Name: name, Price: price, ImageURL: imageURL,
		BrandID: brandID, ColorIDs: colorIDs, CreatedAt: now, UpdatedAt: now,
	}
	if err := e.Validate(); err != nil {
		return events.ModelEvent{}, err
	}
	if err := s.models.Insert(ctx, e); err != nil {
		return events.ModelEvent{}, err
	}
	s.publishModel(ctx, "model.created", e)
	return e, nil
}

func (s *Service) publishInsurance(ctx context.Context, routingKey string, e events.InsuranceEvent) {
	body, err := events.EncodeInsurance(e)
	if err != nil {
		s.logger.Error("failed to encode insurance event", slog.String("routing_key", routingKey), slog.Any("error", err))
		return
	}
	_ = s.registry.Publish(ctx, routingKey, body)
}

func (s *Service) publishModel(ctx context.Context, routingKey string, e events.ModelEvent) {
	body, err := events.EncodeModel(e)
	if err != nil {
		s.logger.Error("failed to encode model event", slog.String("routing_key", routingKey), slog.Any("error", err))
		return
	}
	_ = s.registry.Publish(ctx, routingKey, body)
}
