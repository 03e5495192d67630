package relay

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/collab-relay/domain/relay"
	"github.com/example/collab-relay/events"
	"github.com/example/collab-relay/modules/presence"
)

// Publisher receives relay lifecycle events. Implementations must not block.
type Publisher interface {
	PresenceChanged(event events.PresenceChangedEvent)
	EventRelayed(event events.EventRelayedEvent)
	EventDropped(event events.EventDroppedEvent)
}

type noopPublisher struct{}

func (noopPublisher) PresenceChanged(events.PresenceChangedEvent) {}
func (noopPublisher) EventRelayed(events.EventRelayedEvent)       {}
func (noopPublisher) EventDropped(events.EventDroppedEvent)       {}

// Engine routes client events between connections. It owns the connection
// index and keeps connection bindings consistent with the Room Registry.
type Engine struct {
	mu       sync.Mutex
	registry *presence.Registry
	conns    map[string]*Connection            // connectionID -> Connection
	rooms    map[string]map[string]*Connection // roomID -> connectionID -> Connection

	publisher Publisher
	logger    types.Logger
}

// presenceChange describes one registry mutation and who must hear about it.
type presenceChange struct {
	change       string
	room         string
	username     string
	connectionID string
	members      []string
	others       []*Connection // receive user-joined / user-left
	everyone     []*Connection // receive room-members
	announce     bool
	created      bool
	closed       bool
}

// NewEngine creates an engine over registry. A nil publisher discards events.
func NewEngine(registry *presence.Registry, publisher Publisher, logger types.Logger) *Engine {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Engine{
		registry:  registry,
		conns:     make(map[string]*Connection),
		rooms:     make(map[string]map[string]*Connection),
		publisher: publisher,
		logger:    logger,
	}
}

// Connect registers c and sends it its transport identity.
func (e *Engine) Connect(c *Connection) {
	e.mu.Lock()
	e.conns[c.id] = c
	e.mu.Unlock()

	frame, err := EncodeFrame(EventConnected, domain.Connected{ID: c.id})
	if err != nil {
		e.logger.Error("Failed to encode connected frame", "connectionID", c.id, "error", err)
		return
	}
	if err := c.Send(frame); err != nil {
		e.logger.Warn("Failed to send connected frame", "connectionID", c.id, "error", err)
	}
	e.logger.Debug("Connection registered", "connectionID", c.id)
}

// Disconnect runs the leave path for c's last binding, removes it from the
// index and closes it. Calling it again is a no-op.
func (e *Engine) Disconnect(c *Connection) {
	e.mu.Lock()
	if _, ok := e.conns[c.id]; !ok {
		e.mu.Unlock()
		c.Close()
		return
	}
	delete(e.conns, c.id)
	change := e.unbindLocked(c)
	if change != nil {
		e.announceLocked(change)
	}
	e.mu.Unlock()

	c.Close()
	if change != nil {
		e.publishPresence(change)
	}
	e.logger.Debug("Connection removed", "connectionID", c.id)
}

// Dispatch decodes one inbound frame from c and routes it. Malformed frames
// and unknown events are logged and dropped; nothing is reported to c.
func (e *Engine) Dispatch(c *Connection, raw []byte) {
	frame, err := DecodeFrame(raw)
	if err != nil {
		e.drop(c, "", err)
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		var req domain.JoinRequest
		if err := decodePayload(frame.Data, &req); err != nil {
			e.drop(c, frame.Event, err)
			return
		}
		err = e.Join(c, req.Room, req.Username)
	case EventLeaveRoom:
		e.Leave(c)
	case EventChatMessage:
		var msg domain.ChatMessage
		if err := decodePayload(frame.Data, &msg); err != nil {
			e.drop(c, frame.Event, err)
			return
		}
		e.Chat(c, msg)
	case EventEditorDelta:
		var delta domain.EditorDelta
		if err := decodePayload(frame.Data, &delta); err != nil {
			e.drop(c, frame.Event, err)
			return
		}
		err = e.EditorDelta(c, delta)
	case EventCanvasSnapshot:
		var snapshot domain.CanvasSnapshot
		if err := decodePayload(frame.Data, &snapshot); err != nil {
			e.drop(c, frame.Event, err)
			return
		}
		err = e.CanvasSnapshot(c, snapshot)
	case EventSendFile:
		var transfer domain.FileTransfer
		if err := decodePayload(frame.Data, &transfer); err != nil {
			e.drop(c, frame.Event, err)
			return
		}
		err = e.SendFile(c, transfer)
	default:
		// the name stays in the error only, keeping stats keys bounded
		e.drop(c, "", fmt.Errorf("%w: %q", ErrUnknownEvent, frame.Event))
		return
	}

	if err != nil {
		e.drop(c, frame.Event, err)
	}
}

// Join binds c to (room, username). Re-joining the same pair is a no-op;
// joining a different pair leaves the current one first.
func (e *Engine) Join(c *Connection, room, username string) error {
	e.mu.Lock()
	if _, ok := e.conns[c.id]; !ok {
		e.mu.Unlock()
		return ErrConnectionClosed
	}
	if c.bound && c.room == room && c.username == username {
		e.mu.Unlock()
		return nil
	}

	changes := make([]*presenceChange, 0, 2)
	if c.bound {
		if left := e.unbindLocked(c); left != nil {
			changes = append(changes, left)
		}
	}
	changes = append(changes, e.bindLocked(c, room, username))
	for _, change := range changes {
		e.announceLocked(change)
	}
	e.mu.Unlock()

	for _, change := range changes {
		e.publishPresence(change)
	}
	e.logger.Info("User joined room", "connectionID", c.id, "roomID", room, "username", username)
	return nil
}

// Leave unbinds c from its current room. An unbound connection is left as is.
func (e *Engine) Leave(c *Connection) {
	e.mu.Lock()
	if _, ok := e.conns[c.id]; !ok || !c.bound {
		e.mu.Unlock()
		return
	}
	room, username := c.room, c.username
	change := e.unbindLocked(c)
	if change != nil {
		e.announceLocked(change)
	}
	e.mu.Unlock()

	if change != nil {
		e.publishPresence(change)
	}
	e.logger.Info("User left room", "connectionID", c.id, "roomID", room, "username", username)
}

// Chat forwards {username, text} to every connection in msg.RoomID except c.
func (e *Engine) Chat(c *Connection, msg domain.ChatMessage) {
	e.relay(c, EventChatMessage, msg.RoomID, domain.ChatMessage{
		Username: msg.Username,
		Text:     msg.Text,
	})
}

// EditorDelta forwards the changed buffers to every other connection in the room.
func (e *Engine) EditorDelta(c *Connection, delta domain.EditorDelta) error {
	if err := ValidateEditorDelta(delta); err != nil {
		return err
	}
	room := delta.RoomID
	delta.RoomID = ""
	e.relay(c, EventEditorDelta, room, delta)
	return nil
}

// CanvasSnapshot forwards a full canvas image to every other connection in the room.
func (e *Engine) CanvasSnapshot(c *Connection, snapshot domain.CanvasSnapshot) error {
	if err := ValidateCanvasSnapshot(snapshot); err != nil {
		return err
	}
	room := snapshot.RoomID
	snapshot.RoomID = ""
	e.relay(c, EventCanvasSnapshot, room, snapshot)
	return nil
}

// SendFile delivers a file to the connection named by transfer.TargetID.
// An unknown target drops the file silently.
func (e *Engine) SendFile(c *Connection, transfer domain.FileTransfer) error {
	if err := ValidateFileTransfer(transfer); err != nil {
		return err
	}

	e.mu.Lock()
	target, ok := e.conns[transfer.TargetID]
	e.mu.Unlock()
	if !ok {
		e.logger.Debug("File target not connected", "connectionID", c.id, "targetID", transfer.TargetID)
		e.publisher.EventDropped(events.EventDroppedEvent{
			Kind:         EventSendFile,
			ConnectionID: c.id,
			Reason:       "unknown target",
			Timestamp:    time.Now(),
		})
		return nil
	}

	file := *transfer.File
	if file.Type == "" {
		file.Type = domain.DefaultFileType
	}
	if file.Size == 0 {
		file.Size = int64(len(file.Buffer))
	}

	frame, err := EncodeFrame(EventReceiveFile, domain.ReceivedFile{From: c.id, File: file})
	if err != nil {
		return err
	}
	delivered := e.deliver([]*Connection{target}, frame)
	e.publisher.EventRelayed(events.EventRelayedEvent{
		Kind:         EventSendFile,
		ConnectionID: c.id,
		Recipients:   1,
		Delivered:    delivered,
		Bytes:        len(frame),
		Timestamp:    time.Now(),
	})
	return nil
}

// Binding returns the room and username c is bound to.
func (e *Engine) Binding(c *Connection) (room, username string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return c.room, c.username, c.bound
}

// ConnectionCount returns the number of open connections.
func (e *Engine) ConnectionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.conns)
}

// Shutdown closes every open connection. Their read loops observe the close
// and run the normal disconnect path.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	conns := make([]*Connection, 0, len(e.conns))
	for _, c := range e.conns {
		conns = append(conns, c)
	}
	e.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// relay fans a payload out to room minus the sender. Delivery happens outside
// the engine lock.
func (e *Engine) relay(c *Connection, kind, room string, payload any) {
	frame, err := EncodeFrame(kind, payload)
	if err != nil {
		e.drop(c, kind, err)
		return
	}

	e.mu.Lock()
	targets := roomTargets(e.rooms[room], c.id)
	e.mu.Unlock()

	delivered := e.deliver(targets, frame)
	e.publisher.EventRelayed(events.EventRelayedEvent{
		Kind:         kind,
		RoomID:       room,
		ConnectionID: c.id,
		Recipients:   len(targets),
		Delivered:    delivered,
		Bytes:        len(frame),
		Timestamp:    time.Now(),
	})
}

// deliver queues frame on every target independently and returns how many
// accepted it.
func (e *Engine) deliver(targets []*Connection, frame []byte) int {
	delivered := 0
	for _, target := range targets {
		if err := target.Send(frame); err != nil {
			e.logger.Warn("Delivery dropped", "connectionID", target.id, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (e *Engine) drop(c *Connection, kind string, err error) {
	e.logger.Warn("Dropped inbound event", "connectionID", c.id, "event", kind, "error", err)
	e.publisher.EventDropped(events.EventDroppedEvent{
		Kind:         kind,
		ConnectionID: c.id,
		Reason:       err.Error(),
		Timestamp:    time.Now(),
	})
}

// bindLocked binds c and joins the registry. Caller holds e.mu.
func (e *Engine) bindLocked(c *Connection, room, username string) *presenceChange {
	created := !e.registry.Exists(room)

	peers, ok := e.rooms[room]
	if !ok {
		peers = make(map[string]*Connection)
		e.rooms[room] = peers
	}
	shared := false
	for _, peer := range peers {
		if peer.username == username {
			shared = true
			break
		}
	}
	others := roomTargets(peers, "")

	peers[c.id] = c
	c.bound, c.room, c.username = true, room, username
	members := e.registry.Join(room, username)

	return &presenceChange{
		change:       events.PresenceJoined,
		room:         room,
		username:     username,
		connectionID: c.id,
		members:      members,
		others:       others,
		everyone:     append(others, c),
		announce:     !shared,
		created:      created,
	}
}

// unbindLocked unbinds c and leaves the registry unless another connection
// still holds the same identity in the room. It returns nil when the
// registry is unchanged. Caller holds e.mu.
func (e *Engine) unbindLocked(c *Connection) *presenceChange {
	if !c.bound {
		return nil
	}
	room, username := c.room, c.username
	c.bound, c.room, c.username = false, "", ""

	peers := e.rooms[room]
	delete(peers, c.id)
	if len(peers) == 0 {
		delete(e.rooms, room)
	}
	for _, peer := range peers {
		if peer.username == username {
			return nil
		}
	}

	members := e.registry.Leave(room, username)
	remaining := roomTargets(peers, "")
	return &presenceChange{
		change:       events.PresenceLeft,
		room:         room,
		username:     username,
		connectionID: c.id,
		members:      members,
		others:       remaining,
		everyone:     remaining,
		announce:     true,
		closed:       len(members) == 0,
	}
}

// announceLocked queues the presence frames for change. Queuing under e.mu
// keeps every connection's view of a room in registry order.
func (e *Engine) announceLocked(change *presenceChange) {
	membersFrame, err := EncodeFrame(EventRoomMembers, domain.RoomMembers{
		Room:    change.room,
		Members: change.members,
	})
	if err != nil {
		e.logger.Error("Failed to encode room members", "roomID", change.room, "error", err)
		return
	}

	var noticeEvent, noticeText string
	if change.change == events.PresenceJoined {
		noticeEvent = EventUserJoined
		noticeText = fmt.Sprintf("%s has joined the room.", change.username)
	} else {
		noticeEvent = EventUserLeft
		noticeText = fmt.Sprintf("%s has left the room.", change.username)
	}
	noticeFrame, err := EncodeFrame(noticeEvent, domain.SystemNotice{
		Username: domain.SystemUsername,
		Text:     noticeText,
		Member:   change.username,
	})
	if err != nil {
		e.logger.Error("Failed to encode system notice", "roomID", change.room, "error", err)
		return
	}

	if change.change == events.PresenceJoined {
		if change.announce {
			e.deliver(change.others, noticeFrame)
		}
		e.deliver(change.everyone, membersFrame)
		return
	}

	e.deliver(change.everyone, membersFrame)
	e.deliver(change.others, noticeFrame)
}

func (e *Engine) publishPresence(change *presenceChange) {
	if !change.announce {
		return
	}
	e.publisher.PresenceChanged(events.PresenceChangedEvent{
		RoomID:       change.room,
		Username:     change.username,
		ConnectionID: change.connectionID,
		Change:       change.change,
		Members:      change.members,
		RoomCreated:  change.created,
		RoomClosed:   change.closed,
		Timestamp:    time.Now(),
	})
}

// roomTargets snapshots peers, skipping the connection with ID exclude.
func roomTargets(peers map[string]*Connection, exclude string) []*Connection {
	targets := make([]*Connection, 0, len(peers))
	for id, peer := range peers {
		if id == exclude {
			continue
		}
		targets = append(targets, peer)
	}
	return targets
}
