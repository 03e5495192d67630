package presence

import (
	"context"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestModule_Services(t *testing.T) {
	m := NewModule(&mockLogger{})
	ctx := context.Background()
	assert.Equal(t, "presence", m.Name())

	m.Registry().Join("r1", "alice")
	m.Registry().Join("r1", "bob")
	m.Registry().Join("r2", "carol")

	rooms, err := m.listRooms(ctx, ListRoomsRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, rooms.Rooms, 2)
	assert.Equal(t, RoomSummary{Room: "r1", Members: []string{"alice", "bob"}, Count: 2}, rooms.Rooms[0])

	members, err := m.getRoomMembers(ctx, GetRoomMembersRequest{Room: "r2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, GetRoomMembersResponse{Room: "r2", Members: []string{"carol"}}, members)

	missing, err := m.getRoomMembers(ctx, GetRoomMembersRequest{Room: "nope"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, missing.Members)
	assert.Empty(t, missing.Members)

	health := m.Health(ctx)
	assert.True(t, health.Healthy)
	assert.Equal(t, 2, health.Details["rooms"])
}
