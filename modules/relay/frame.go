package relay

import (
	"encoding/json"
	"fmt"

	domain "github.com/example/collab-relay/domain/relay"
)

// Client events.
const (
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventChatMessage    = "chat-message"
	EventEditorDelta    = "editor-delta"
	EventCanvasSnapshot = "canvas-snapshot"
	EventSendFile       = "send-file"
)

// Server events. chat-message, editor-delta and canvas-snapshot are relayed
// under their client names.
const (
	EventConnected   = "connected"
	EventUserJoined  = "user-joined"
	EventUserLeft    = "user-left"
	EventRoomMembers = "room-members"
	EventReceiveFile = "receive-file"
)

// EncodeFrame wraps payload in a Frame and serializes it.
func EncodeFrame(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	frame, err := json.Marshal(domain.Frame{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s frame: %w", event, err)
	}
	return frame, nil
}

// DecodeFrame parses an inbound frame.
func DecodeFrame(raw []byte) (domain.Frame, error) {
	var frame domain.Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return domain.Frame{}, fmt.Errorf("invalid frame: %w", err)
	}
	return frame, nil
}

// decodePayload unmarshals frame data into v. A frame without data leaves v
// at its zero value.
func decodePayload(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
