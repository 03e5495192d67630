package stats

import (
	"maps"
	"sync"
	"time"

	"github.com/example/collab-relay/events"
)

// ServiceGetRelayStats is the request-reply service exposing the counters.
const ServiceGetRelayStats = "get-relay-stats"

// KindStats aggregates relayed traffic for one event kind.
type KindStats struct {
	Events     int64 `json:"events"`
	Recipients int64 `json:"recipients"`
	Delivered  int64 `json:"delivered"`
	Bytes      int64 `json:"bytes"`
}

// Snapshot is a point-in-time copy of the relay counters.
type Snapshot struct {
	Joins        int64                `json:"joins"`
	Leaves       int64                `json:"leaves"`
	RoomsCreated int64                `json:"rooms_created"`
	RoomsClosed  int64                `json:"rooms_closed"`
	Relayed      map[string]KindStats `json:"relayed"`
	Dropped      map[string]int64     `json:"dropped"`
	DroppedTotal int64                `json:"dropped_total"`
	LastEventAt  time.Time            `json:"last_event_at,omitempty"`
}

// GetRelayStatsRequest is the request for the get-relay-stats service.
type GetRelayStatsRequest struct{}

// Store folds relay events into counters.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		snapshot: Snapshot{
			Relayed: make(map[string]KindStats),
			Dropped: make(map[string]int64),
		},
	}
}

// RecordPresence counts a join or leave.
func (s *Store) RecordPresence(event events.PresenceChangedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Change {
	case events.PresenceJoined:
		s.snapshot.Joins++
	case events.PresenceLeft:
		s.snapshot.Leaves++
	}
	if event.RoomCreated {
		s.snapshot.RoomsCreated++
	}
	if event.RoomClosed {
		s.snapshot.RoomsClosed++
	}
	s.touch(event.Timestamp)
}

// RecordRelayed adds one fan-out to the per-kind totals.
func (s *Store) RecordRelayed(event events.EventRelayedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.snapshot.Relayed[event.Kind]
	k.Events++
	k.Recipients += int64(event.Recipients)
	k.Delivered += int64(event.Delivered)
	k.Bytes += int64(event.Bytes)
	s.snapshot.Relayed[event.Kind] = k
	s.touch(event.Timestamp)
}

// RecordDropped counts a discarded inbound event.
func (s *Store) RecordDropped(event events.EventDroppedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kind := event.Kind
	if kind == "" {
		kind = "unknown"
	}
	s.snapshot.Dropped[kind]++
	s.snapshot.DroppedTotal++
	s.touch(event.Timestamp)
}

// Snapshot returns a copy of the counters.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snapshot
	out.Relayed = maps.Clone(s.snapshot.Relayed)
	out.Dropped = maps.Clone(s.snapshot.Dropped)
	return out
}

func (s *Store) touch(at time.Time) {
	if at.After(s.snapshot.LastEventAt) {
		s.snapshot.LastEventAt = at
	}
}
