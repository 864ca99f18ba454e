package presence

import "sync"

// Set is a set of connection ids.
type Set map[string]struct{}

// Rooms tracks which connections are joined to which rooms. Rooms are created
// implicitly on first join and dropped when their last member leaves.
// Membership is ephemeral: it only answers "who is reachable right now" and
// carries no obligation across restarts.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]Set // room id -> connection ids
	joined  map[string]Set // connection id -> room ids
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]Set),
		joined:  make(map[string]Set),
	}
}

// Join adds a connection to a room. Joining a room twice is a no-op.
func (r *Rooms) Join(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[roomID]; !ok {
		r.members[roomID] = make(Set)
	}
	r.members[roomID][connID] = struct{}{}

	if _, ok := r.joined[connID]; !ok {
		r.joined[connID] = make(Set)
	}
	r.joined[connID][roomID] = struct{}{}
}

// Leave removes a connection from a room. Leaving a room the connection is
// not a member of is a no-op.
func (r *Rooms) Leave(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(connID, roomID)
}

func (r *Rooms) leaveLocked(connID, roomID string) {
	if room, ok := r.members[roomID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(r.members, roomID)
		}
	}
	if rooms, ok := r.joined[connID]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.joined, connID)
		}
	}
}

// Members returns a snapshot of the connection ids currently in a room.
func (r *Rooms) Members(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.members[roomID]
	if !ok {
		return nil
	}

	ids := make([]string, 0, len(room))
	for connID := range room {
		ids = append(ids, connID)
	}
	return ids
}

// ForgetConn removes a connection from every room it belongs to and returns
// the rooms it left. Called on disconnect.
func (r *Rooms) ForgetConn(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, ok := r.joined[connID]
	if !ok {
		return nil
	}

	left := make([]string, 0, len(rooms))
	for roomID := range rooms {
		left = append(left, roomID)
		if room, ok := r.members[roomID]; ok {
			delete(room, connID)
			if len(room) == 0 {
				delete(r.members, roomID)
			}
		}
	}
	delete(r.joined, connID)
	return left
}

// Snapshot returns the current membership of every non-empty room.
func (r *Rooms) Snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.members))
	for roomID, room := range r.members {
		ids := make([]string, 0, len(room))
		for connID := range room {
			ids = append(ids, connID)
		}
		out[roomID] = ids
	}
	return out
}
