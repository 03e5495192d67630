package relay

import (
	"errors"

	domain "github.com/example/collab-relay/domain/relay"
)

// Delivery errors
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Validation errors
var (
	ErrMissingRoom        = errors.New("room id is required")
	ErrMissingSender      = errors.New("sender is required")
	ErrMissingTarget      = errors.New("target connection id is required")
	ErrMissingFile        = errors.New("file is required")
	ErrMissingFileName    = errors.New("file name is required")
	ErrMissingFileContent = errors.New("file content is required")
	ErrUnknownEvent       = errors.New("unknown event")
)

// ValidateEditorDelta checks the routing fields of an editor delta.
func ValidateEditorDelta(d domain.EditorDelta) error {
	if d.RoomID == "" {
		return ErrMissingRoom
	}
	if d.Sender == "" {
		return ErrMissingSender
	}
	return nil
}

// ValidateCanvasSnapshot checks the routing fields of a canvas snapshot.
func ValidateCanvasSnapshot(s domain.CanvasSnapshot) error {
	if s.RoomID == "" {
		return ErrMissingRoom
	}
	if s.Sender == "" {
		return ErrMissingSender
	}
	return nil
}

// ValidateFileTransfer checks that a transfer names a target and carries a
// named, non-empty file.
func ValidateFileTransfer(t domain.FileTransfer) error {
	if t.TargetID == "" {
		return ErrMissingTarget
	}
	if t.File == nil {
		return ErrMissingFile
	}
	if t.File.Name == "" {
		return ErrMissingFileName
	}
	if len(t.File.Buffer) == 0 {
		return ErrMissingFileContent
	}
	return nil
}
