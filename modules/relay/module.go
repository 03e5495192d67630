package relay

import (
	"context"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/collab-relay/events"
	"github.com/example/collab-relay/modules/presence"
)

// Module hosts the relay engine and publishes its lifecycle events on the
// event bus.
type Module struct {
	engine   *Engine
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Publisher                  = (*Module)(nil)
)

// NewModule creates a relay module whose engine shares registry with the
// presence module.
func NewModule(registry *presence.Registry, logger types.Logger) *Module {
	m := &Module{logger: logger}
	m.engine = NewEngine(registry, m, logger)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// Engine returns the relay engine for the transport to drive.
func (m *Module) Engine() *Engine {
	return m.engine
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PresenceChangedV1.ToBase(),
		events.EventRelayedV1.ToBase(),
		events.EventDroppedV1.ToBase(),
	}
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Relay module started")
	return nil
}

// Stop closes every open connection.
func (m *Module) Stop(_ context.Context) error {
	count := m.engine.ConnectionCount()
	m.engine.Shutdown()
	m.logger.Info("Relay module stopped", "connections", count)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connections": m.engine.ConnectionCount(),
		},
	}
}

// PresenceChanged publishes a PresenceChanged event.
func (m *Module) PresenceChanged(event events.PresenceChangedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.PresenceChangedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish PresenceChanged event", "roomID", event.RoomID, "error", err)
	}
}

// EventRelayed publishes an EventRelayed event.
func (m *Module) EventRelayed(event events.EventRelayedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.EventRelayedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish EventRelayed event", "kind", event.Kind, "error", err)
	}
}

// EventDropped publishes an EventDropped event.
func (m *Module) EventDropped(event events.EventDroppedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.EventDroppedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish EventDropped event", "kind", event.Kind, "error", err)
	}
}
