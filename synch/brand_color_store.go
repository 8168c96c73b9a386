package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kea-dealership/event-core/common/catalog"
)

// BrandStore is Synch's read path onto the seeded brands collection,
// the Mongo counterpart to employee/brand_color_store.go's MySQL one —
// brands carry no mutation events of their own in this core, so this
// is a plain lookup with no reconciler above it.
type BrandStore struct {
	collection *mongo.Collection
}

func NewBrandStore(db *mongo.Database) *BrandStore {
	return &BrandStore{collection: db.Collection("brands")}
}

func (s *BrandStore) GetByID(ctx context.Context, id string) (catalog.Brand, bool, error) {
	var b catalog.Brand
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Brand{}, false, nil
	}
	if err != nil {
		return catalog.Brand{}, false, fmt.Errorf("failed to query brand: %w", err)
	}
	return b, true, nil
}

// ColorStore is Synch's read path onto the seeded colors collection.
type ColorStore struct {
	collection *mongo.Collection
}

func NewColorStore(db *mongo.Database) *ColorStore {
	return &ColorStore{collection: db.Collection("colors")}
}

func (s *ColorStore) GetByID(ctx context.Context, id string) (catalog.Color, bool, error) {
	var c catalog.Color
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Color{}, false, nil
	}
	if err != nil {
		return catalog.Color{}, false, fmt.Errorf("failed to query color: %w", err)
	}
	return c, true, nil
}
