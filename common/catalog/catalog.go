// Package catalog holds the brand/color reference records the model
// reconciler embeds into a synchronized model document
// (SPEC_FULL.md §3 "Supplemented from original_source/"). Brands and
// colors carry no mutation events of their own in this core — they
// are seeded once by an operator step and looked up read-only, the
// same way the original system treats them as near-static reference
// tables rather than replicated entities.
package catalog

import "github.com/kea-dealership/event-core/common/events"

// Brand is a minimal seeded reference record.
type Brand struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Color is a minimal seeded reference record.
type Color struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// ModelRecord is what the Synch store holds for a replicated model:
// the event fields plus the embedded brand and color snapshots the
// model reconciler resolves at create time (spec.md §4.6.4 step 4).
type ModelRecord struct {
	ID        string           `json:"id" bson:"_id"`
	Name      string           `json:"name" bson:"name"`
	Price     float64          `json:"price" bson:"price"`
	ImageURL  string           `json:"image_url" bson:"image_url"`
	Brand     Brand            `json:"brand" bson:"brand"`
	Colors    []Color          `json:"colors" bson:"colors"`
	CreatedAt events.Timestamp `json:"created_at" bson:"created_at"`
	UpdatedAt events.Timestamp `json:"updated_at" bson:"updated_at"`
}
