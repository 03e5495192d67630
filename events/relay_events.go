package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// Presence change kinds.
const (
	PresenceJoined = "joined"
	PresenceLeft   = "left"
)

// PresenceChangedEvent is emitted after every Room Registry mutation.
type PresenceChangedEvent struct {
	RoomID       string    `json:"room_id"`
	Username     string    `json:"username"`
	ConnectionID string    `json:"connection_id"`
	Change       string    `json:"change"`
	Members      []string  `json:"members"`
	RoomCreated  bool      `json:"room_created"`
	RoomClosed   bool      `json:"room_closed"`
	Timestamp    time.Time `json:"timestamp"`
}

// EventRelayedEvent is emitted after a client event has been fanned out.
// It carries metadata only, never the payload.
type EventRelayedEvent struct {
	Kind         string    `json:"kind"`
	RoomID       string    `json:"room_id,omitempty"`
	ConnectionID string    `json:"connection_id"`
	Recipients   int       `json:"recipients"`
	Delivered    int       `json:"delivered"`
	Bytes        int       `json:"bytes"`
	Timestamp    time.Time `json:"timestamp"`
}

// EventDroppedEvent is emitted when an inbound event is discarded
// (malformed payload, unknown target, unknown event name).
type EventDroppedEvent struct {
	Kind         string    `json:"kind"`
	ConnectionID string    `json:"connection_id"`
	Reason       string    `json:"reason"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event definitions for the relay domain.
var (
	PresenceChangedV1 = helper.EventDefinition[PresenceChangedEvent](
		"relay",
		"PresenceChanged",
		"v1",
	)

	EventRelayedV1 = helper.EventDefinition[EventRelayedEvent](
		"relay",
		"EventRelayed",
		"v1",
	)

	EventDroppedV1 = helper.EventDefinition[EventDroppedEvent](
		"relay",
		"EventDropped",
		"v1",
	)
)
