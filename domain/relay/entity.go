package relay

import "encoding/json"

// SystemUsername is the display identity used for relay-generated notices.
const SystemUsername = "System"

// DefaultFileType is applied to file payloads that do not declare a content type.
const DefaultFileType = "application/octet-stream"

// Frame is the envelope exchanged over the WebSocket in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRequest is sent by a client to join or leave a room.
type JoinRequest struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// ChatMessage is a text line relayed to the other members of a room.
// RoomID is only present on inbound frames.
type ChatMessage struct {
	RoomID   string `json:"roomId,omitempty"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// EditorDelta is a partial update over the three shared code buffers.
// A nil buffer means "unchanged" and is not serialized.
type EditorDelta struct {
	RoomID string  `json:"roomId,omitempty"`
	Sender string  `json:"sender"`
	HTML   *string `json:"html,omitempty"`
	CSS    *string `json:"css,omitempty"`
	JS     *string `json:"js,omitempty"`
}

// CanvasSnapshot is a full-state replacement of the shared canvas.
type CanvasSnapshot struct {
	RoomID string          `json:"roomId,omitempty"`
	Sender string          `json:"sender"`
	Image  json.RawMessage `json:"image,omitempty"`
}

// File is a named binary blob. Buffer is base64 on the wire.
type File struct {
	Name   string `json:"name"`
	Buffer []byte `json:"buffer"`
	Type   string `json:"type"`
	Size   int64  `json:"size"`
}

// FileTransfer is a client request to unicast a file to another connection.
type FileTransfer struct {
	TargetID string `json:"targetId"`
	File     *File  `json:"file"`
}

// ReceivedFile is delivered to the target of a FileTransfer.
type ReceivedFile struct {
	From string `json:"from"`
	File File   `json:"file"`
}

// SystemNotice is a chat-shaped line announcing a presence change.
type SystemNotice struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Member   string `json:"member"`
}

// RoomMembers carries the full current member list of a room.
type RoomMembers struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}

// Connected tells a client the transport identity it can be addressed by.
type Connected struct {
	ID string `json:"id"`
}
