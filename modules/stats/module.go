package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/collab-relay/events"
)

// Module consumes relay events and serves aggregated counters.
type Module struct {
	store  *Store
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new stats module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		store:  NewStore(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "stats"
}

// Store returns the counter store.
func (m *Module) Store() *Store {
	return m.store
}

// RegisterEventConsumers subscribes to the relay events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.PresenceChangedV1, m.handlePresenceChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register PresenceChanged consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.EventRelayedV1, m.handleEventRelayed, m,
	); err != nil {
		return fmt.Errorf("failed to register EventRelayed consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.EventDroppedV1, m.handleEventDropped, m,
	); err != nil {
		return fmt.Errorf("failed to register EventDropped consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"PresenceChanged.v1", "EventRelayed.v1", "EventDropped.v1"})
	return nil
}

func (m *Module) handlePresenceChanged(_ context.Context, event events.PresenceChangedEvent, _ *mono.Msg) error {
	m.store.RecordPresence(event)
	m.logger.Debug("Recorded presence change",
		"roomID", event.RoomID,
		"username", event.Username,
		"change", event.Change)
	return nil
}

func (m *Module) handleEventRelayed(_ context.Context, event events.EventRelayedEvent, _ *mono.Msg) error {
	m.store.RecordRelayed(event)
	return nil
}

func (m *Module) handleEventDropped(_ context.Context, event events.EventDroppedEvent, _ *mono.Msg) error {
	m.store.RecordDropped(event)
	m.logger.Debug("Recorded dropped event", "kind", event.Kind, "reason", event.Reason)
	return nil
}

// RegisterServices registers the stats service in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetRelayStats, json.Unmarshal, json.Marshal, m.getRelayStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRelayStats, err)
	}

	m.logger.Info("Registered stats services", "services", []string{ServiceGetRelayStats})
	return nil
}

func (m *Module) getRelayStats(_ context.Context, _ GetRelayStatsRequest, _ *mono.Msg) (Snapshot, error) {
	return m.store.Snapshot(), nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Stats module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	snapshot := m.store.Snapshot()
	m.logger.Info("Stats module stopped",
		"joins", snapshot.Joins,
		"dropped", snapshot.DroppedTotal)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	snapshot := m.store.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"joins":         snapshot.Joins,
			"dropped_total": snapshot.DroppedTotal,
		},
	}
}
