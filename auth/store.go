package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kea-dealership/event-core/common/events"
)

// Store is Auth's MongoDB employee-replica gateway. It implements
// reconcile.EmployeeStore so the shared employee reconciliation
// algorithm (spec.md §4.6.2) runs unmodified against this collection,
// grounded on the teacher's orders/store.go collection-per-store
// shape, adapted to the typed bson-tagged events.EmployeeEvent struct
// instead of hand-built bson.M documents (see DESIGN.md).
type Store struct {
	collection *mongo.Collection
}

func NewStore(db *mongo.Database) *Store {
	return &Store{collection: db.Collection("employees")}
}

func (s *Store) GetByID(ctx context.Context, id string) (events.EmployeeEvent, bool, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (events.EmployeeEvent, bool, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (events.EmployeeEvent, bool, error) {
	var e events.EmployeeEvent
	err := s.collection.FindOne(ctx, filter).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return events.EmployeeEvent{}, false, nil
	}
	if err != nil {
		return events.EmployeeEvent{}, false, fmt.Errorf("failed to query employee replica: %w", err)
	}
	return e, true, nil
}

func (s *Store) Upsert(ctx context.Context, e events.EmployeeEvent) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert employee replica: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete employee replica: %w", err)
	}
	return nil
}

func (s *Store) SetTombstone(ctx context.Context, id string, updatedAt events.Timestamp) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_deleted": true,
		"updated_at": updatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to tombstone employee replica: %w", err)
	}
	return nil
}

func (s *Store) ClearTombstone(ctx context.Context, e events.EmployeeEvent) error {
	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": e.ID}, bson.M{"$set": bson.M{
		"is_deleted": false,
		"updated_at": e.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to clear employee replica tombstone: %w", err)
	}
	return nil
}
