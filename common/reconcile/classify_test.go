package reconcile

import (
	"errors"
	"testing"

	"github.com/kea-dealership/event-core/common/events"
)

func TestClassifyMalformedIsRejectNoRequeue(t *testing.T) {
	if got := Classify(events.ErrMalformedEvent); got != OutcomeRejectNoRequeue {
		t.Fatalf("got %s, want reject_no_requeue", got)
	}
}

func TestClassifyUnknownRoutingIsRejectNoRequeue(t *testing.T) {
	if got := Classify(events.ErrUnknownRouting); got != OutcomeRejectNoRequeue {
		t.Fatalf("got %s, want reject_no_requeue", got)
	}
}

func TestClassifyUniqueFieldTakenIsNackRequeue(t *testing.T) {
	if got := Classify(WrapUniqueFieldTaken("email", "a@x.test")); got != OutcomeNackRequeue {
		t.Fatalf("got %s, want nack_requeue", got)
	}
}

func TestClassifyMissingForeignIDIsNackRequeue(t *testing.T) {
	if got := Classify(WrapMissingForeignID("color", "c9")); got != OutcomeNackRequeue {
		t.Fatalf("got %s, want nack_requeue", got)
	}
}

func TestClassifyAlreadyInDesiredStateIsAck(t *testing.T) {
	if got := Classify(WrapAlreadyInDesiredState("already deleted")); got != OutcomeAck {
		t.Fatalf("got %s, want ack", got)
	}
}

func TestClassifyNilIsAck(t *testing.T) {
	if got := Classify(nil); got != OutcomeAck {
		t.Fatalf("got %s, want ack", got)
	}
}

func TestClassifyUnexpectedErrorIsNackRequeue(t *testing.T) {
	if got := Classify(errors.New("boom")); got != OutcomeNackRequeue {
		t.Fatalf("got %s, want nack_requeue", got)
	}
}

func TestClassifyStoreUnavailableIsNackRequeue(t *testing.T) {
	if got := Classify(ErrStoreUnavailable); got != OutcomeNackRequeue {
		t.Fatalf("got %s, want nack_requeue", got)
	}
}
