package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", m.healthHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket, websocket.Config{
		Origins: m.cfg.AllowedOrigins,
	}))

	// REST API v1
	api := app.Group("/api/v1")
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:id/members", m.getRoomMembers)
	api.Get("/stats", m.getStats)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	details := map[string]any{
		"module":      "api",
		"connections": m.engine.ConnectionCount(),
	}
	if rooms, err := m.presence.ListRooms(c.UserContext()); err == nil {
		details["rooms"] = len(rooms)
	}
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Details: details,
	})
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.presence.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	return c.JSON(RoomListResponse{
		Rooms: rooms,
		Total: len(rooms),
	})
}

// getRoomMembers handles GET /api/v1/rooms/:id/members. Unknown rooms have no
// members rather than being an error.
func (m *APIModule) getRoomMembers(c *fiber.Ctx) error {
	roomID := c.Params("id")

	members, err := m.presence.RoomMembers(c.UserContext(), roomID)
	if err != nil {
		m.logger.Error("Failed to get room members", "roomID", roomID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "members_failed",
			Message: "Failed to get room members",
		})
	}

	return c.JSON(RoomMembersResponse{
		Room:    roomID,
		Members: members,
	})
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	snapshot, err := m.stats.GetStats(c.UserContext())
	if err != nil {
		m.logger.Error("Failed to get relay stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get relay stats",
		})
	}

	return c.JSON(StatsResponse{
		Connections: m.engine.ConnectionCount(),
		Stats:       snapshot,
	})
}
