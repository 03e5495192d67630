package api

import (
	"github.com/example/collab-relay/modules/presence"
	"github.com/example/collab-relay/modules/stats"
)

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []presence.RoomSummary `json:"rooms"`
	Total int                    `json:"total"`
}

// RoomMembersResponse is the API response for a room's member list.
type RoomMembersResponse struct {
	Room    string   `json:"room"`
	Members []string `json:"members"`
}

// StatsResponse is the API response for relay counters.
type StatsResponse struct {
	Connections int            `json:"connections"`
	Stats       stats.Snapshot `json:"stats"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
