package bus

import "github.com/tinyland-inc/picobuttons/pkg/host"

// EventKind tells subscribers what happened to a message.
type EventKind string

const (
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

type MessageEvent struct {
	Kind      EventKind     `json:"kind"`
	MessageID string        `json:"message_id"`
	Message   *host.Message `json:"-"` // nil for EventDeleted
}
