package events

import (
	"errors"
	"testing"
	"time"
)

func sampleEmployee() EmployeeEvent {
	return EmployeeEvent{
		ID:             "e1",
		Email:          "a@x.test",
		HashedPassword: "hash",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Role:           RoleSalesPerson,
		IsDeleted:      false,
		CreatedAt:      NewTimestamp(time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC)),
		UpdatedAt:      NewTimestamp(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
	}
}

func TestEmployeeEventRoundTrip(t *testing.T) {
	want := sampleEmployee()
	body, err := EncodeEmployee(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeEmployee(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != want.ID || got.Email != want.Email || got.Role != want.Role ||
		got.IsDeleted != want.IsDeleted ||
		!got.CreatedAt.Time.Equal(want.CreatedAt.Time) ||
		!got.UpdatedAt.Time.Equal(want.UpdatedAt.Time) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestTimestampTruncatesToSeconds(t *testing.T) {
	e := sampleEmployee()
	body, err := EncodeEmployee(e)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeEmployee(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.CreatedAt.Time.Equal(e.CreatedAt.Time) {
		t.Fatalf("created_at not truncated consistently: %v vs %v", got.CreatedAt.Time, e.CreatedAt.Time)
	}
	if got.CreatedAt.Nanosecond() != 0 {
		t.Fatalf("expected sub-second precision dropped, got %v", got.CreatedAt.Time)
	}
}

func TestDecodeEmployeeMalformedJSON(t *testing.T) {
	_, err := DecodeEmployee([]byte(`{not json`))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestDecodeEmployeeMissingRequiredField(t *testing.T) {
	_, err := DecodeEmployee([]byte(`{"id":"","email":"a@x.test","role":"admin","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for missing id, got %v", err)
	}
}

func TestDecodeEmployeeUnknownRole(t *testing.T) {
	_, err := DecodeEmployee([]byte(`{"id":"e1","email":"a@x.test","role":"ceo","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for unknown role, got %v", err)
	}
}

func TestDecodeInsuranceRejectsNonPositivePrice(t *testing.T) {
	_, err := DecodeInsurance([]byte(`{"id":"i1","name":"Flat Tire","price":0,"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for non-positive price, got %v", err)
	}
}

func TestDecodeModelRejectsEmptyColorIDs(t *testing.T) {
	_, err := DecodeModel([]byte(`{"id":"m1","name":"Civic","brand_id":"b1","color_ids":[],"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}`))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent for empty color_ids, got %v", err)
	}
}

func TestModelEventRoundTrip(t *testing.T) {
	want := ModelEvent{
		ID:        "m1",
		Name:      "Civic",
		Price:     24999.99,
		ImageURL:  "https://example.test/civic.png",
		BrandID:   "b1",
		ColorIDs:  []string{"c1", "c2"},
		CreatedAt: NewTimestamp(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)),
		UpdatedAt: NewTimestamp(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)),
	}
	body, err := EncodeModel(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeModel(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != want.ID || len(got.ColorIDs) != len(want.ColorIDs) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}
