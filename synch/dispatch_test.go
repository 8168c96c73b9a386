package main

import (
	"context"
	"testing"
	"time"

	"github.com/kea-dealership/event-core/common/catalog"
	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

type memInsuranceStore struct {
	byID map[string]events.InsuranceEvent
}

func newMemInsuranceStore() *memInsuranceStore {
	return &memInsuranceStore{byID: map[string]events.InsuranceEvent{}}
}

func (s *memInsuranceStore) GetByID(ctx context.Context, id string) (events.InsuranceEvent, bool, error) {
	e, ok := s.byID[id]
	return e, ok, nil
}

func (s *memInsuranceStore) GetByName(ctx context.Context, name string) (events.InsuranceEvent, bool, error) {
	for _, e := range s.byID {
		if e.Name == name {
			return e, true, nil
		}
	}
	return events.InsuranceEvent{}, false, nil
}

func (s *memInsuranceStore) Upsert(ctx context.Context, e events.InsuranceEvent) error {
	s.byID[e.ID] = e
	return nil
}

type memModelStore struct {
	byID map[string]catalog.ModelRecord
}

func newMemModelStore() *memModelStore { return &memModelStore{byID: map[string]catalog.ModelRecord{}} }

func (s *memModelStore) GetByID(ctx context.Context, id string) (catalog.ModelRecord, bool, error) {
	m, ok := s.byID[id]
	return m, ok, nil
}

func (s *memModelStore) Insert(ctx context.Context, m catalog.ModelRecord) error {
	s.byID[m.ID] = m
	return nil
}

type memBrandLookup struct{ brands map[string]catalog.Brand }

func (l memBrandLookup) GetByID(ctx context.Context, id string) (catalog.Brand, bool, error) {
	b, ok := l.brands[id]
	return b, ok, nil
}

type memColorLookup struct{ colors map[string]catalog.Color }

func (l memColorLookup) GetByID(ctx context.Context, id string) (catalog.Color, bool, error) {
	c, ok := l.colors[id]
	return c, ok, nil
}

func synchTS(offsetSeconds int) events.Timestamp {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return events.NewTimestamp(base.Add(time.Duration(offsetSeconds) * time.Second))
}

func insuranceBody(t *testing.T, id, name string, price float64, created, updated events.Timestamp) []byte {
	t.Helper()
	e := events.InsuranceEvent{ID: id, Name: name, Price: price, CreatedAt: created, UpdatedAt: updated}
	body, err := events.EncodeInsurance(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return body
}

func modelBody(t *testing.T, id, brandID string, colorIDs []string, created events.Timestamp) []byte {
	t.Helper()
	e := events.ModelEvent{
		ID: id, Name: "M", Price: 1, ImageURL: "http://x", BrandID: brandID,
		ColorIDs: colorIDs, CreatedAt: created, UpdatedAt: created,
	}
	body, err := events.EncodeModel(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return body
}

// Scenario 5 (spec.md §8): a rename that collides with another live
// insurance's name requeues, then applies once the conflict clears.
func TestScenarioInsuranceRenameConflictRequeuesThenApplies(t *testing.T) {
	store := newMemInsuranceStore()
	d := Dispatcher{Insurance: reconcile.InsuranceReconciler{Store: store}}
	ctx := context.Background()

	mustSynchOK(t, d.Handle(ctx, "insurance.created", insuranceBody(t, "I1", "Flat Tire", 10, synchTS(0), synchTS(0))))
	mustSynchOK(t, d.Handle(ctx, "insurance.created", insuranceBody(t, "I2", "Windshield", 20, synchTS(0), synchTS(0))))

	// I2 tries to rename to "Flat Tire" before I1's own rename frees it up.
	err := d.Handle(ctx, "insurance.updated", insuranceBody(t, "I2", "Flat Tire", 20, synchTS(0), synchTS(1)))
	if reconcile.Classify(err) != reconcile.OutcomeNackRequeue {
		t.Fatalf("expected a requeue outcome for the name conflict, got %v", err)
	}

	mustSynchOK(t, d.Handle(ctx, "insurance.updated", insuranceBody(t, "I1", "New", 10, synchTS(0), synchTS(2))))
	mustSynchOK(t, d.Handle(ctx, "insurance.updated", insuranceBody(t, "I2", "Flat Tire", 20, synchTS(0), synchTS(1))))

	i1, _, _ := store.GetByID(ctx, "I1")
	i2, _, _ := store.GetByID(ctx, "I2")
	if i1.Name != "New" || i2.Name != "Flat Tire" {
		t.Fatalf("expected I1=New, I2=Flat Tire, got I1=%q I2=%q", i1.Name, i2.Name)
	}
}

// Scenario 6 (spec.md §8): a model referencing a not-yet-replicated
// color requeues, then applies once the color exists.
func TestScenarioModelWithMissingColorRequeuesThenApplies(t *testing.T) {
	models := newMemModelStore()
	brands := memBrandLookup{brands: map[string]catalog.Brand{"B1": {ID: "B1", Name: "Acme"}}}
	colors := memColorLookup{colors: map[string]catalog.Color{}}
	d := Dispatcher{Model: reconcile.ModelReconciler{Store: models, Brands: brands, Colors: colors}}
	ctx := context.Background()

	body := modelBody(t, "M1", "B1", []string{"C9"}, synchTS(0))
	err := d.Handle(ctx, "model.created", body)
	if reconcile.Classify(err) != reconcile.OutcomeNackRequeue {
		t.Fatalf("expected a requeue outcome for the missing color, got %v", err)
	}

	colors.colors["C9"] = catalog.Color{ID: "C9", Name: "Red"}
	mustSynchOK(t, d.Handle(ctx, "model.created", body))

	m, ok, _ := models.GetByID(ctx, "M1")
	if !ok || len(m.Colors) != 1 || m.Colors[0].ID != "C9" {
		t.Fatalf("expected M1 to embed color C9, got %+v (ok=%v)", m, ok)
	}
}

func mustSynchOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
