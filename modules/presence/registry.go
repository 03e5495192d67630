package presence

import (
	"slices"
	"strings"
	"sync"
)

// memberSet keeps display identities in first-join order.
type memberSet struct {
	order []string
	index map[string]struct{}
}

func newMemberSet() *memberSet {
	return &memberSet{index: make(map[string]struct{})}
}

func (s *memberSet) add(identity string) {
	if _, ok := s.index[identity]; ok {
		return
	}
	s.index[identity] = struct{}{}
	s.order = append(s.order, identity)
}

func (s *memberSet) remove(identity string) {
	if _, ok := s.index[identity]; !ok {
		return
	}
	delete(s.index, identity)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == identity })
}

func (s *memberSet) snapshot() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Registry maps room IDs to the set of display identities joined to them.
// A room exists only while its member set is non-empty.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*memberSet
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*memberSet)}
}

// Join adds identity to room, creating the room if needed, and returns
// the resulting member list. Joining twice is a no-op.
func (r *Registry) Join(room, identity string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.rooms[room]
	if !ok {
		set = newMemberSet()
		r.rooms[room] = set
	}
	set.add(identity)
	return set.snapshot()
}

// Leave removes identity from room and returns the remaining members.
// The room is deleted once empty; an empty result means it no longer exists.
// Unknown rooms and identities are ignored.
func (r *Registry) Leave(room, identity string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.rooms[room]
	if !ok {
		return []string{}
	}
	set.remove(identity)
	if len(set.order) == 0 {
		delete(r.rooms, room)
		return []string{}
	}
	return set.snapshot()
}

// Members returns a copy of the member list of room, empty if the room does not exist.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.rooms[room]
	if !ok {
		return []string{}
	}
	return set.snapshot()
}

// Exists reports whether room currently has members.
func (r *Registry) Exists(room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room]
	return ok
}

// Rooms returns a snapshot of every live room ordered by room ID.
func (r *Registry) Rooms() []RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]RoomSummary, 0, len(r.rooms))
	for id, set := range r.rooms {
		result = append(result, RoomSummary{
			Room:    id,
			Members: set.snapshot(),
			Count:   len(set.order),
		})
	}
	slices.SortFunc(result, func(a, b RoomSummary) int { return strings.Compare(a.Room, b.Room) })
	return result
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
