package reconcile

import (
	"context"
	"fmt"

	"github.com/kea-dealership/event-core/common/catalog"
	"github.com/kea-dealership/event-core/common/events"
)

// ModelStore is the minimal store-gateway surface the model
// reconciler needs (spec.md §4.7, §4.6.4).
type ModelStore interface {
	GetByID(ctx context.Context, id string) (catalog.ModelRecord, bool, error)
	Insert(ctx context.Context, m catalog.ModelRecord) error
}

// BrandLookup resolves a brand id to its seeded snapshot (C12's Redis
// cache-aside sits in front of a concrete implementation of this).
type BrandLookup interface {
	GetByID(ctx context.Context, id string) (catalog.Brand, bool, error)
}

// ColorLookup resolves a color id to its seeded snapshot.
type ColorLookup interface {
	GetByID(ctx context.Context, id string) (catalog.Color, bool, error)
}

// ModelReconciler implements spec.md §4.6.4: create only, no
// uniqueness constraint, brand/color foreign-id probes that requeue
// on a miss rather than fail permanently (the referenced create may
// still be in flight).
type ModelReconciler struct {
	Store  ModelStore
	Brands BrandLookup
	Colors ColorLookup
}

func (r ModelReconciler) Reconcile(ctx context.Context, action events.Action, e events.ModelEvent) error {
	if action != events.ActionCreate {
		return fmt.Errorf("%w: model reconciler cannot handle action %q", events.ErrUnknownRouting, action)
	}
	return r.create(ctx, e)
}

func (r ModelReconciler) create(ctx context.Context, e events.ModelEvent) error {
	_, hasR, err := r.Store.GetByID(ctx, e.ID)
	if err != nil {
		return storeErr(err)
	}
	if hasR {
		return nil // duplicate message
	}

	brand, hasBrand, err := r.Brands.GetByID(ctx, e.BrandID)
	if err != nil {
		return storeErr(err)
	}
	if !hasBrand {
		return WrapMissingForeignID("brand", e.BrandID)
	}

	colors := make([]catalog.Color, 0, len(e.ColorIDs))
	for _, colorID := range e.ColorIDs {
		c, hasColor, err := r.Colors.GetByID(ctx, colorID)
		if err != nil {
			return storeErr(err)
		}
		if !hasColor {
			return WrapMissingForeignID("color", colorID)
		}
		colors = append(colors, c)
	}

	record := catalog.ModelRecord{
		ID:        e.ID,
		Name:      e.Name,
		Price:     e.Price,
		ImageURL:  e.ImageURL,
		Brand:     brand,
		Colors:    colors,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if err := r.Store.Insert(ctx, record); err != nil {
		return storeErr(err)
	}
	return nil
}
