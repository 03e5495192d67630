package stats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// StatsPort reads relay counters from the stats module.
type StatsPort interface {
	GetStats(ctx context.Context) (Snapshot, error)
}

type statsAdapter struct {
	container mono.ServiceContainer
}

// NewStatsAdapter creates a StatsPort backed by the service container.
func NewStatsAdapter(container mono.ServiceContainer) StatsPort {
	return &statsAdapter{container: container}
}

// GetStats calls the get-relay-stats service.
func (a *statsAdapter) GetStats(ctx context.Context) (Snapshot, error) {
	req := GetRelayStatsRequest{}
	var resp Snapshot
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetRelayStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return Snapshot{}, fmt.Errorf("%s service call failed: %w", ServiceGetRelayStats, err)
	}
	return resp, nil
}
