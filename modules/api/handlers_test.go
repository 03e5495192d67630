package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/collab-relay/modules/presence"
	"github.com/example/collab-relay/modules/relay"
	"github.com/example/collab-relay/modules/stats"
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

// presenceStub serves presence queries straight from a registry.
type presenceStub struct {
	registry *presence.Registry
	err      error
}

func (p *presenceStub) ListRooms(_ context.Context) ([]presence.RoomSummary, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.registry.Rooms(), nil
}

func (p *presenceStub) RoomMembers(_ context.Context, room string) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.registry.Members(room), nil
}

type statsStub struct {
	snapshot stats.Snapshot
	err      error
}

func (s *statsStub) GetStats(_ context.Context) (stats.Snapshot, error) {
	return s.snapshot, s.err
}

func testConfig() Config {
	return Config{
		Port:               "0",
		AllowedOrigins:     []string{"*"},
		SendBufferSize:     64,
		PingInterval:       time.Hour,
		MaxFrameBytes:      1 << 20,
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
	}
}

type testServer struct {
	module   *APIModule
	app      *fiber.App
	registry *presence.Registry
	presence *presenceStub
	stats    *statsStub
}

func newTestServer() *testServer {
	registry := presence.NewRegistry()
	logger := &mockLogger{}

	m := NewModule(testConfig(), logger)
	ps := &presenceStub{registry: registry}
	ss := &statsStub{snapshot: stats.Snapshot{Joins: 3, Relayed: map[string]stats.KindStats{}, Dropped: map[string]int64{}}}
	m.presence = ps
	m.stats = ss
	m.SetEngine(relay.NewEngine(registry, nil, logger))

	return &testServer{
		module:   m,
		app:      m.newApp(),
		registry: registry,
		presence: ps,
		stats:    ss,
	}
}

func (s *testServer) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestModule_Metadata(t *testing.T) {
	m := NewModule(testConfig(), &mockLogger{})

	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"presence", "stats"}, m.Dependencies())
	assert.Error(t, m.Start(context.Background()), "Start must fail without dependencies")
	assert.NoError(t, m.Stop(context.Background()))
}

func TestHandlers_ListRooms(t *testing.T) {
	s := newTestServer()
	s.registry.Join("r2", "carol")
	s.registry.Join("r1", "alice")
	s.registry.Join("r1", "bob")

	code, body := s.get(t, "/api/v1/rooms")
	require.Equal(t, fiber.StatusOK, code)

	var resp RoomListResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "r1", resp.Rooms[0].Room)
	assert.Equal(t, []string{"alice", "bob"}, resp.Rooms[0].Members)
}

func TestHandlers_RoomMembers(t *testing.T) {
	tests := []struct {
		name string
		room string
		want string
	}{
		{name: "existing room", room: "r1", want: `{"room":"r1","members":["alice"]}`},
		{name: "unknown room is empty", room: "ghost", want: `{"room":"ghost","members":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.registry.Join("r1", "alice")

			code, body := s.get(t, "/api/v1/rooms/"+tt.room+"/members")

			assert.Equal(t, fiber.StatusOK, code)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestHandlers_PresenceFailure(t *testing.T) {
	s := newTestServer()
	s.presence.err = errors.New("service unavailable")

	code, body := s.get(t, "/api/v1/rooms")

	assert.Equal(t, fiber.StatusInternalServerError, code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "list_failed", resp.Error)
}

func TestHandlers_Stats(t *testing.T) {
	s := newTestServer()

	code, body := s.get(t, "/api/v1/stats")
	require.Equal(t, fiber.StatusOK, code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, int64(3), resp.Stats.Joins)
	assert.Zero(t, resp.Connections)

	s.stats.err = errors.New("timeout")
	code, _ = s.get(t, "/api/v1/stats")
	assert.Equal(t, fiber.StatusInternalServerError, code)
}

func TestHandlers_Health(t *testing.T) {
	s := newTestServer()
	s.registry.Join("r1", "alice")

	code, body := s.get(t, "/health")
	require.Equal(t, fiber.StatusOK, code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.EqualValues(t, 1, resp.Details["rooms"])
	assert.EqualValues(t, 0, resp.Details["connections"])
}

func TestHandlers_WebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer()

	code, _ := s.get(t, "/ws")

	assert.Equal(t, fiber.StatusUpgradeRequired, code)
}

func TestHandlers_UnknownRoute(t *testing.T) {
	s := newTestServer()

	code, body := s.get(t, "/nope")

	assert.Equal(t, fiber.StatusNotFound, code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.NotEmpty(t, resp.Message)
}
