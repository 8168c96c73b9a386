// Package reconcile holds the error taxonomy and classification policy
// shared by every reconciler and consumer runtime (spec.md §7), plus
// the small set of reconciliation primitives spec.md §4.6.1 defines
// once and every entity-specific reconciler reuses.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/kea-dealership/event-core/common/events"
)

// Sentinel errors forming the taxonomy of spec.md §7. Reconcilers wrap
// one of these with context via fmt.Errorf("%w: ...", ...); callers
// recover the class with errors.Is.
var (
	// ErrUniqueFieldTaken: a live record with a different id already
	// holds the incoming event's unique field value, and the incoming
	// event is not fresh enough to win the race. Transient —
	// reconciliation order, not a permanent conflict (spec.md §4.6.5).
	ErrUniqueFieldTaken = errors.New("unique field already taken")

	// ErrMissingForeignID: a referenced brand/color id is not yet
	// present locally. Transient — the referenced create may still be
	// in flight (spec.md §4.6.4, §4.6.5).
	ErrMissingForeignID = errors.New("missing foreign id")

	// ErrAlreadyInDesiredState: the record is already tombstoned (or
	// already live) and the incoming event is stale. Permanent — ack,
	// no requeue (spec.md §4.6.2, §4.6.5).
	ErrAlreadyInDesiredState = errors.New("already in desired state")

	// ErrNotFound: the reconciler expected an existing record (e.g.
	// delete of a record that was never created) and found none.
	// Transient — the create may still be in flight (spec.md §4.6.2).
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable: the store connection was lost mid-handler.
	// Transient — triggers reconnect on the next message (spec.md §7).
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrBrokerUnavailable: the broker connection was lost. Transient
	// — triggers reconnect and publish retry (spec.md §7).
	ErrBrokerUnavailable = errors.New("broker unavailable")
)

// Outcome is what a consumer runtime must do with the in-flight
// delivery once a reconciler returns (spec.md §4.4, §4.6.5).
type Outcome int

const (
	// OutcomeAck: processed successfully, or a permanent error that
	// should not be retried.
	OutcomeAck Outcome = iota
	// OutcomeNackRequeue: a transient/ordering error; put the message
	// back on the queue so it is redelivered.
	OutcomeNackRequeue
	// OutcomeRejectNoRequeue: the payload itself is unusable (malformed
	// JSON, unknown routing) — redelivery would never succeed.
	OutcomeRejectNoRequeue
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAck:
		return "ack"
	case OutcomeNackRequeue:
		return "nack_requeue"
	case OutcomeRejectNoRequeue:
		return "reject_no_requeue"
	default:
		return "unknown"
	}
}

// Classify maps a reconciler/dispatcher error to the outcome the
// consumer runtime applies to the in-flight delivery, implementing the
// table of spec.md §4.6.5 in exactly one place so every service's
// consumer shares the same policy. A nil error always classifies to
// OutcomeAck.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAck
	case errors.Is(err, events.ErrMalformedEvent), errors.Is(err, events.ErrUnknownRouting):
		return OutcomeRejectNoRequeue
	case errors.Is(err, ErrAlreadyInDesiredState):
		return OutcomeAck
	case errors.Is(err, ErrUniqueFieldTaken),
		errors.Is(err, ErrMissingForeignID),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrBrokerUnavailable):
		return OutcomeNackRequeue
	default:
		// Any other unexpected error: nack-requeue (spec.md §4.4's
		// dispatch table, last row).
		return OutcomeNackRequeue
	}
}

// WrapUniqueFieldTaken builds a typed, contextualized ErrUniqueFieldTaken.
func WrapUniqueFieldTaken(field, value string) error {
	return fmt.Errorf("%w: %s %q already in use by a live record", ErrUniqueFieldTaken, field, value)
}

// WrapMissingForeignID builds a typed, contextualized ErrMissingForeignID.
func WrapMissingForeignID(kind, id string) error {
	return fmt.Errorf("%w: %s %q not found locally", ErrMissingForeignID, kind, id)
}

// WrapAlreadyInDesiredState builds a typed, contextualized
// ErrAlreadyInDesiredState.
func WrapAlreadyInDesiredState(reason string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyInDesiredState, reason)
}

// WrapNotFound builds a typed, contextualized ErrNotFound.
func WrapNotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
