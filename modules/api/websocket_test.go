package api

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/collab-relay/domain/relay"
	"github.com/example/collab-relay/modules/relay"
)

// startListener serves the test app on a random local port.
func startListener(t *testing.T, s *testServer) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = s.app.Listener(ln) }()
	t.Cleanup(func() { _ = s.app.ShutdownWithTimeout(time.Second) })

	return "ws://" + ln.Addr().String() + "/ws"
}

type wsClient struct {
	t    *testing.T
	conn *fws.Conn
	id   string
}

func dial(t *testing.T, url string) *wsClient {
	t.Helper()
	conn, _, err := fws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	c := &wsClient{t: t, conn: conn}
	f := c.read()
	require.Equal(t, relay.EventConnected, f.Event)
	var connected domain.Connected
	require.NoError(t, json.Unmarshal(f.Data, &connected))
	require.NotEmpty(t, connected.ID)
	c.id = connected.ID
	return c
}

func (c *wsClient) send(event string, payload any) {
	c.t.Helper()
	raw, err := relay.EncodeFrame(event, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(fws.TextMessage, raw))
}

func (c *wsClient) read() domain.Frame {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	var f domain.Frame
	require.NoError(c.t, json.Unmarshal(raw, &f))
	return f
}

func (c *wsClient) expect(event string, v any) {
	c.t.Helper()
	f := c.read()
	require.Equal(c.t, event, f.Event)
	if v != nil {
		require.NoError(c.t, json.Unmarshal(f.Data, v))
	}
}

func TestWebSocket_AliceBobScenario(t *testing.T) {
	s := newTestServer()
	url := startListener(t, s)

	alice := dial(t, url)
	defer alice.conn.Close()
	alice.send(relay.EventJoinRoom, domain.JoinRequest{Room: "r1", Username: "alice"})
	var members domain.RoomMembers
	alice.expect(relay.EventRoomMembers, &members)
	assert.Equal(t, []string{"alice"}, members.Members)

	bob := dial(t, url)
	bob.send(relay.EventJoinRoom, domain.JoinRequest{Room: "r1", Username: "bob"})
	bob.expect(relay.EventRoomMembers, &members)
	assert.Equal(t, []string{"alice", "bob"}, members.Members)

	var notice domain.SystemNotice
	alice.expect(relay.EventUserJoined, &notice)
	assert.Equal(t, "bob has joined the room.", notice.Text)
	alice.expect(relay.EventRoomMembers, &members)
	assert.Equal(t, []string{"alice", "bob"}, members.Members)

	alice.send(relay.EventChatMessage, domain.ChatMessage{RoomID: "r1", Username: "alice", Text: "hi"})
	var chat domain.ChatMessage
	bob.expect(relay.EventChatMessage, &chat)
	assert.Equal(t, domain.ChatMessage{Username: "alice", Text: "hi"}, chat)

	alice.send(relay.EventSendFile, domain.FileTransfer{
		TargetID: bob.id,
		File:     &domain.File{Name: "hello.txt", Buffer: []byte("hello")},
	})
	var received domain.ReceivedFile
	bob.expect(relay.EventReceiveFile, &received)
	assert.Equal(t, alice.id, received.From)
	assert.Equal(t, []byte("hello"), received.File.Buffer)
	assert.Equal(t, domain.DefaultFileType, received.File.Type)

	// abrupt close, no leave-room and no close frame
	require.NoError(t, bob.conn.Close())

	alice.expect(relay.EventRoomMembers, &members)
	assert.Equal(t, []string{"alice"}, members.Members)
	alice.expect(relay.EventUserLeft, &notice)
	assert.Equal(t, domain.SystemNotice{Username: "System", Text: "bob has left the room.", Member: "bob"}, notice)

	assert.Equal(t, []string{"alice"}, s.registry.Members("r1"))
	assert.Eventually(t, func() bool {
		return s.module.engine.ConnectionCount() == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWebSocket_SenderNeverReceivesOwnChat(t *testing.T) {
	s := newTestServer()
	url := startListener(t, s)

	alice := dial(t, url)
	defer alice.conn.Close()
	bob := dial(t, url)
	defer bob.conn.Close()

	alice.send(relay.EventJoinRoom, domain.JoinRequest{Room: "r1", Username: "alice"})
	alice.expect(relay.EventRoomMembers, nil)
	bob.send(relay.EventJoinRoom, domain.JoinRequest{Room: "r2", Username: "bob"})
	bob.expect(relay.EventRoomMembers, nil)

	alice.send(relay.EventChatMessage, domain.ChatMessage{RoomID: "r1", Username: "alice", Text: "anyone?"})
	// malformed frames are dropped without a reply
	require.NoError(t, alice.conn.WriteMessage(fws.TextMessage, []byte("not json")))

	// a marker on bob's own room proves nothing else was queued before it
	alice.send(relay.EventChatMessage, domain.ChatMessage{RoomID: "r2", Username: "alice", Text: "marker"})
	var chat domain.ChatMessage
	bob.expect(relay.EventChatMessage, &chat)
	assert.Equal(t, "marker", chat.Text)

	require.NoError(t, alice.conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := alice.conn.ReadMessage()
	assert.Error(t, err, "alice must not receive anything")
}
