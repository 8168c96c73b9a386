package reconcile

import "github.com/kea-dealership/event-core/common/events"

// IsFresher reports whether a's timestamp is strictly after b's —
// the `is_fresher(A, B)` primitive of spec.md §4.6.1, used throughout
// the reconcilers to decide whether an incoming event should win a
// conflict or lose to already-applied state.
func IsFresher(a, b events.Timestamp) bool {
	return a.After(b)
}
