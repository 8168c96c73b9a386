package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
)

// ErrModelNotFound is returned by ModelStore methods that expect an
// existing row and find none.
var ErrModelNotFound = errors.New("model not found")

// ModelStore is Employee's authoritative MySQL gateway for models,
// storing the brand/color foreign ids directly (unlike Synch's
// catalog.ModelRecord, which embeds the resolved snapshots — Employee
// is the origin of those ids, not a consumer resolving them).
type ModelStore struct {
	db *sql.DB
}

func NewModelStore(db *sql.DB) *ModelStore {
	return &ModelStore{db: db}
}

func (s *ModelStore) GetByID(ctx context.Context, id string) (events.ModelEvent, bool, error) {
	const query = `SELECT id, name, price, image_url, brand_id, created_at, updated_at FROM models WHERE id = ?`

	var e events.ModelEvent
	row := s.db.QueryRowContext(ctx, query, id)
	err := row.Scan(&e.ID, &e.Name, &e.Price, &e.ImageURL, &e.BrandID, &e.CreatedAt.Time, &e.UpdatedAt.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return events.ModelEvent{}, false, nil
	}
	if err != nil {
		return events.ModelEvent{}, false, fmt.Errorf("failed to scan model row: %w", err)
	}

	colorIDs, err := s.colorIDs(ctx, id)
	if err != nil {
		return events.ModelEvent{}, false, err
	}
	e.ColorIDs = colorIDs
	return e, true, nil
}

func (s *ModelStore) colorIDs(ctx context.Context, modelID string) ([]string, error) {
	const query = `SELECT color_id FROM model_colors WHERE model_id = ?`
	rows, err := s.db.QueryContext(ctx, query, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query model colors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan model color: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert creates a new model row and its color associations inside a
// single transaction — the brand/color ids have already been
// validated to exist by the caller (the business service) before
// Insert is invoked.
func (s *ModelStore) Insert(ctx context.Context, e events.ModelEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin model insert transaction: %w", err)
	}
	defer tx.Rollback()

	const insertModel = `INSERT INTO models (id, name, price, image_url, brand_id, created_at, updated_at)
	                     VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertModel, e.ID, e.Name, e.Price, e.ImageURL, e.BrandID, e.CreatedAt.Time, e.UpdatedAt.Time); err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}

	const insertColor = `INSERT INTO model_colors (model_id, color_id) VALUES (?, ?)`
	for _, colorID := range e.ColorIDs {
		if _, err := tx.ExecContext(ctx, insertColor, e.ID, colorID); err != nil {
			return fmt.Errorf("failed to insert model color: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model insert: %w", err)
	}
	return nil
}
