package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kea-dealership/event-core/common/events"
	"github.com/kea-dealership/event-core/common/reconcile"
)

// InsuranceStore is Synch's MongoDB gateway onto its read-only
// insurance replica, shaped like auth/store.go's employee replica but
// satisfying reconcile.InsuranceStore instead.
type InsuranceStore struct {
	collection *mongo.Collection
}

func NewInsuranceStore(db *mongo.Database) *InsuranceStore {
	return &InsuranceStore{collection: db.Collection("insurances")}
}

var _ reconcile.InsuranceStore = (*InsuranceStore)(nil)

func (s *InsuranceStore) GetByID(ctx context.Context, id string) (events.InsuranceEvent, bool, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *InsuranceStore) GetByName(ctx context.Context, name string) (events.InsuranceEvent, bool, error) {
	return s.findOne(ctx, bson.M{"name": name})
}

func (s *InsuranceStore) findOne(ctx context.Context, filter bson.M) (events.InsuranceEvent, bool, error) {
	var e events.InsuranceEvent
	err := s.collection.FindOne(ctx, filter).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return events.InsuranceEvent{}, false, nil
	}
	if err != nil {
		return events.InsuranceEvent{}, false, fmt.Errorf("failed to query insurance replica: %w", err)
	}
	return e, true, nil
}

func (s *InsuranceStore) Upsert(ctx context.Context, e events.InsuranceEvent) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert insurance replica: %w", err)
	}
	return nil
}
