package events

import "errors"

// ErrMalformedEvent is returned by Decode* when the payload is not
// valid JSON, is missing a required field, or fails a basic domain
// check (e.g. a non-positive insurance price). spec.md §4.1 classifies
// this as a permanent, non-requeue error.
var ErrMalformedEvent = errors.New("malformed event")

// ErrUnknownRouting is returned when a routing key names a topic or
// action this core does not recognize. spec.md §4.5/§7 classifies this
// as permanent, non-requeue.
var ErrUnknownRouting = errors.New("unknown routing")
