package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kea-dealership/event-core/common/catalog"
)

// ErrBrandNotFound and ErrColorNotFound are returned by the reference
// lookups below.
var (
	ErrBrandNotFound = errors.New("brand not found")
	ErrColorNotFound = errors.New("color not found")
)

// BrandStore is Employee's read path onto the seeded brands table
// (SPEC_FULL.md §3 supplement — brands/colors are near-static
// reference data, seeded by an operator step rather than mutated
// through the broker, per the Python original).
type BrandStore struct {
	db *sql.DB
}

func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

func (s *BrandStore) GetByID(ctx context.Context, id string) (catalog.Brand, bool, error) {
	const query = `SELECT id, name FROM brands WHERE id = ?`
	var b catalog.Brand
	err := s.db.QueryRowContext(ctx, query, id).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Brand{}, false, nil
	}
	if err != nil {
		return catalog.Brand{}, false, fmt.Errorf("failed to scan brand row: %w", err)
	}
	return b, true, nil
}

// ColorStore is Employee's read path onto the seeded colors table.
type ColorStore struct {
	db *sql.DB
}

func NewColorStore(db *sql.DB) *ColorStore {
	return &ColorStore{db: db}
}

func (s *ColorStore) GetByID(ctx context.Context, id string) (catalog.Color, bool, error) {
	const query = `SELECT id, name FROM colors WHERE id = ?`
	var c catalog.Color
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Color{}, false, nil
	}
	if err != nil {
		return catalog.Color{}, false, fmt.Errorf("failed to scan color row: %w", err)
	}
	return c, true, nil
}
