package presence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the Room Registry and exposes read-only views of it
// as request-reply services.
type Module struct {
	registry *Registry
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new presence module with an empty registry.
func NewModule(logger types.Logger) *Module {
	return &Module{
		registry: NewRegistry(),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// Registry returns the room registry shared with the relay engine.
func (m *Module) Registry() *Registry {
	return m.registry
}

// RegisterServices registers the presence services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListRooms, json.Unmarshal, json.Marshal, m.listRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetRoomMembers, json.Unmarshal, json.Marshal, m.getRoomMembers,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoomMembers, err)
	}

	m.logger.Info("Registered presence services",
		"services", []string{ServiceListRooms, ServiceGetRoomMembers})
	return nil
}

func (m *Module) listRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.registry.Rooms()}, nil
}

func (m *Module) getRoomMembers(_ context.Context, req GetRoomMembersRequest, _ *mono.Msg) (GetRoomMembersResponse, error) {
	return GetRoomMembersResponse{
		Room:    req.Room,
		Members: m.registry.Members(req.Room),
	}, nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Presence module started")
	return nil
}

// Stop shuts down the module. Presence is in-memory only and is discarded.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Presence module stopped", "rooms", m.registry.Len())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms": m.registry.Len(),
		},
	}
}
