package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kea-dealership/event-core/common/catalog"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// ModelStore is Synch's MongoDB gateway onto its read-only model
// replica. Model events only ever create (spec.md §9 — update/delete
// are intentionally absent), so unlike InsuranceStore there is no
// Upsert-on-conflict path to support, just a plain Insert.
type ModelStore struct {
	collection *mongo.Collection
}

func NewModelStore(db *mongo.Database) *ModelStore {
	return &ModelStore{collection: db.Collection("models")}
}

var _ reconcile.ModelStore = (*ModelStore)(nil)

func (s *ModelStore) GetByID(ctx context.Context, id string) (catalog.ModelRecord, bool, error) {
	var m catalog.ModelRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.ModelRecord{}, false, nil
	}
	if err != nil {
		return catalog.ModelRecord{}, false, fmt.Errorf("failed to query model replica: %w", err)
	}
	return m, true, nil
}

func (s *ModelStore) Insert(ctx context.Context, m catalog.ModelRecord) error {
	if _, err := s.collection.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("failed to insert model replica: %w", err)
	}
	return nil
}
