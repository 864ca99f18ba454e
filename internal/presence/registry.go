package presence

import "sync"

// Registry maps live connection ids to the user ids they identified as, and
// back. It is process-local and rebuilt from scratch on restart; reconnecting
// clients must re-identify.
type Registry struct {
	mu    sync.RWMutex
	users map[string]string // connection id -> user id
	conns map[string]string // user id -> connection id
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]string),
		conns: make(map[string]string),
	}
}

// Identify binds a connection to a user. A later call for the same user
// displaces the earlier connection's mapping (last-writer-wins); a later call
// for the same connection displaces the earlier user binding.
func (r *Registry) Identify(connID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prevUser, ok := r.users[connID]; ok && prevUser != userID {
		if r.conns[prevUser] == connID {
			delete(r.conns, prevUser)
		}
	}
	if prevConn, ok := r.conns[userID]; ok && prevConn != connID {
		delete(r.users, prevConn)
	}

	r.users[connID] = userID
	r.conns[userID] = connID
}

// UserOf returns the user bound to a connection, if any.
func (r *Registry) UserOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.users[connID]
	return userID, ok
}

// ConnOf returns the connection a user last identified on, if any.
func (r *Registry) ConnOf(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.conns[userID]
	return connID, ok
}

// Forget removes both directions of a connection's mapping. Unknown ids are
// a no-op.
func (r *Registry) Forget(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.users[connID]
	if !ok {
		return
	}

	delete(r.users, connID)
	if r.conns[userID] == connID {
		delete(r.conns, userID)
	}
}

// Identified returns how many connections are currently bound to a user.
func (r *Registry) Identified() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
