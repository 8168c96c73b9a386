// Package events defines the wire-level shape of every event this core
// publishes and consumes: the three entity snapshots of spec.md §3 and
// the canonical timestamp rules of §4.1.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Timestamp is a UTC instant truncated to whole seconds and rendered as
// ISO-8601, the only basis for reconciliation ordering (spec.md §4.1).
// It decodes any valid ISO-8601 value and normalizes it to the same
// canonical (second-truncated, UTC) form before use, matching the
// Python original's `datetime.replace(microsecond=0)` semantics.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to whole seconds in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Second)}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.UTC().Truncate(time.Second).Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: timestamp is not a string: %v", ErrMalformedEvent, err)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("%w: invalid ISO-8601 timestamp %q: %v", ErrMalformedEvent, s, err)
		}
	}
	ts.Time = t.UTC().Truncate(time.Second)
	return nil
}

// MarshalBSONValue stores Timestamp as a native BSON datetime so Auth
// and Synch's Mongo documents sort and compare the same way a
// hand-written query would expect, rather than as a nested document.
func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(ts.Time.UTC().Truncate(time.Second))
}

// UnmarshalBSONValue restores a Timestamp from a native BSON datetime.
func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var raw time.Time
	if err := bson.UnmarshalValue(t, data, &raw); err != nil {
		return fmt.Errorf("%w: invalid bson timestamp: %v", ErrMalformedEvent, err)
	}
	ts.Time = raw.UTC().Truncate(time.Second)
	return nil
}

// After reports whether ts happens strictly after other — the
// is_fresher / is-greater-than primitive reconcilers use throughout
// spec.md §4.6.1.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.Time.After(other.Time)
}

// Role is the employee role enum, encoded as its string value
// (spec.md §4.1 "Enums: encoded as their string value").
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleSalesPerson Role = "sales_person"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSalesPerson:
		return true
	}
	return false
}

// EmployeeEvent is a single employee snapshot plus the two
// reconciliation timestamps (spec.md §3).
type EmployeeEvent struct {
	ID             string    `json:"id" bson:"_id"`
	Email          string    `json:"email" bson:"email"`
	HashedPassword string    `json:"hashed_password" bson:"hashed_password"`
	FirstName      string    `json:"first_name" bson:"first_name"`
	LastName       string    `json:"last_name" bson:"last_name"`
	Role           Role      `json:"role" bson:"role"`
	IsDeleted      bool      `json:"is_deleted" bson:"is_deleted"`
	CreatedAt      Timestamp `json:"created_at" bson:"created_at"`
	UpdatedAt      Timestamp `json:"updated_at" bson:"updated_at"`
}

func (e EmployeeEvent) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: employee event missing id", ErrMalformedEvent)
	case e.Email == "":
		return fmt.Errorf("%w: employee event missing email", ErrMalformedEvent)
	case !e.Role.Valid():
		return fmt.Errorf("%w: employee event has unknown role %q", ErrMalformedEvent, e.Role)
	}
	return nil
}

// InsuranceEvent is a single insurance snapshot (spec.md §3). Price
// must be strictly positive.
type InsuranceEvent struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	CreatedAt Timestamp `json:"created_at" bson:"created_at"`
	UpdatedAt Timestamp `json:"updated_at" bson:"updated_at"`
}

func (e InsuranceEvent) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: insurance event missing id", ErrMalformedEvent)
	case e.Name == "":
		return fmt.Errorf("%w: insurance event missing name", ErrMalformedEvent)
	case e.Price <= 0:
		return fmt.Errorf("%w: insurance event price must be positive, got %v", ErrMalformedEvent, e.Price)
	}
	return nil
}

// ModelEvent is a single car-model snapshot, embedding the non-empty
// set of color ids it comes in (spec.md §3).
type ModelEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url"`
	BrandID   string    `json:"brand_id"`
	ColorIDs  []string  `json:"color_ids"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

func (e ModelEvent) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: model event missing id", ErrMalformedEvent)
	case e.BrandID == "":
		return fmt.Errorf("%w: model event missing brand_id", ErrMalformedEvent)
	case len(e.ColorIDs) == 0:
		return fmt.Errorf("%w: model event has empty color_ids", ErrMalformedEvent)
	}
	return nil
}

// DecodeEmployee decodes and validates an EmployeeEvent payload.
// Decode failures and validation failures are both malformed-event
// errors (spec.md §4.1): the dispatcher treats either as permanent.
func DecodeEmployee(body []byte) (EmployeeEvent, error) {
	var e EmployeeEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return EmployeeEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return EmployeeEvent{}, err
	}
	return e, nil
}

// EncodeEmployee renders the canonical JSON bytes for an EmployeeEvent.
func EncodeEmployee(e EmployeeEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeInsurance decodes and validates an InsuranceEvent payload.
func DecodeInsurance(body []byte) (InsuranceEvent, error) {
	var e InsuranceEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return InsuranceEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return InsuranceEvent{}, err
	}
	return e, nil
}

// EncodeInsurance renders the canonical JSON bytes for an InsuranceEvent.
func EncodeInsurance(e InsuranceEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeModel decodes and validates a ModelEvent payload.
func DecodeModel(body []byte) (ModelEvent, error) {
	var e ModelEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return ModelEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := e.Validate(); err != nil {
		return ModelEvent{}, err
	}
	return e, nil
}

// EncodeModel renders the canonical JSON bytes for a ModelEvent.
func EncodeModel(e ModelEvent) ([]byte, error) {
	return json.Marshal(e)
}
