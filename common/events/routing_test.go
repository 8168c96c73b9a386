package events

import (
	"errors"
	"testing"
)

func TestParseRoutingKeyTable(t *testing.T) {
	cases := []struct {
		key        string
		wantTopic  Topic
		wantAction Action
	}{
		{"employee.created", TopicEmployee, ActionCreate},
		{"employee.updated", TopicEmployee, ActionUpdate},
		{"employee.deleted", TopicEmployee, ActionDelete},
		{"employee.undeleted", TopicEmployee, ActionUndelete},
		{"insurance.created", TopicInsurance, ActionCreate},
		{"insurance.updated", TopicInsurance, ActionUpdate},
		{"model.created", TopicModel, ActionCreate},
	}
	for _, c := range cases {
		got, err := ParseRoutingKey(c.key)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.key, err)
		}
		if got.Topic != c.wantTopic || got.Action != c.wantAction {
			t.Fatalf("%s: got %s/%s want %s/%s", c.key, got.Topic, got.Action, c.wantTopic, c.wantAction)
		}
	}
}

func TestParseRoutingKeyUnknownTopic(t *testing.T) {
	_, err := ParseRoutingKey("purchase.created")
	if !errors.Is(err, ErrUnknownRouting) {
		t.Fatalf("expected ErrUnknownRouting, got %v", err)
	}
}

func TestParseRoutingKeyUnknownAction(t *testing.T) {
	_, err := ParseRoutingKey("employee.archived")
	if !errors.Is(err, ErrUnknownRouting) {
		t.Fatalf("expected ErrUnknownRouting, got %v", err)
	}
}

func TestParseRoutingKeyInvalidCombination(t *testing.T) {
	// insurance has no delete action in spec.md §3
	_, err := ParseRoutingKey("insurance.deleted")
	if !errors.Is(err, ErrUnknownRouting) {
		t.Fatalf("expected ErrUnknownRouting for unsupported combination, got %v", err)
	}

	// model only supports create
	_, err = ParseRoutingKey("model.updated")
	if !errors.Is(err, ErrUnknownRouting) {
		t.Fatalf("expected ErrUnknownRouting for unsupported model action, got %v", err)
	}
}
