package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// PresencePort defines the read-only presence operations used by other modules.
type PresencePort interface {
	ListRooms(ctx context.Context) ([]RoomSummary, error)
	RoomMembers(ctx context.Context, room string) ([]string, error)
}

// PresenceAdapter implements PresencePort using the service container.
type PresenceAdapter struct {
	container mono.ServiceContainer
}

// NewPresenceAdapter creates a new PresenceAdapter.
func NewPresenceAdapter(container mono.ServiceContainer) PresencePort {
	if container == nil {
		panic("presence: ServiceContainer is nil")
	}
	return &PresenceAdapter{container: container}
}

// ListRooms returns every live room.
func (a *PresenceAdapter) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// RoomMembers returns the member list of a room, empty if it does not exist.
func (a *PresenceAdapter) RoomMembers(ctx context.Context, room string) ([]string, error) {
	req := GetRoomMembersRequest{Room: room}
	var resp GetRoomMembersResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRoomMembers,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get room members: %w", err)
	}
	if resp.Members == nil {
		resp.Members = []string{}
	}
	return resp.Members, nil
}
