package presence

// Service names registered in the presence service container.
const (
	ServiceListRooms      = "list-rooms"
	ServiceGetRoomMembers = "get-room-members"
)

// RoomSummary describes one live room.
type RoomSummary struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
	Count   int      `json:"count"`
}

// ListRoomsRequest is the request for the list-rooms service.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response of the list-rooms service.
type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

// GetRoomMembersRequest is the request for the get-room-members service.
type GetRoomMembersRequest struct {
	Room string `json:"room"`
}

// GetRoomMembersResponse is the response of the get-room-members service.
type GetRoomMembersResponse struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}
