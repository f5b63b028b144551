package app

import "errors"

// Event is the signal a row sends back to the controller.
type Event string

const (
	EventUpdate Event = "update"
	EventDelete Event = "delete"
)

// ErrUnknownEvent is returned for any event other than update or delete.
var ErrUnknownEvent = errors.New("unknown event")
