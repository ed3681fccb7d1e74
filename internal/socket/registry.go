package socket

import "sync"

// Registry maps live connection ids to authenticated user ids, both
// directions.  Entries exist only for connection lifetime: created
// on successful start, removed on disconnect.
//
// One live connection per user is assumed.  When a second start
// races in for the same user the last writer wins and Register
// reports the displaced connection so the caller can close it.
type Registry struct {
	mu         sync.RWMutex
	userByConn map[string]uint64
	connByUser map[uint64]string
}

func NewRegistry() *Registry {
	return &Registry{
		userByConn: make(map[string]uint64),
		connByUser: make(map[uint64]string),
	}
}

// Register binds a connection to a user and returns the previously
// bound connection id, if any.
func (r *Registry) Register(connID string, userID uint64) (displaced string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.connByUser[userID]; ok && old != connID {
		displaced = old
		delete(r.userByConn, old)
	}
	r.userByConn[connID] = userID
	r.connByUser[userID] = connID
	return displaced
}

// Remove drops the binding for a connection.  Idempotent.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.userByConn[connID]
	if !ok {
		return
	}
	delete(r.userByConn, connID)
	if r.connByUser[userID] == connID {
		delete(r.connByUser, userID)
	}
}

// LookupUser returns the user bound to a connection.
func (r *Registry) LookupUser(connID string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.userByConn[connID]
	return userID, ok
}

// LookupConn returns the live connection of a user.
func (r *Registry) LookupConn(userID uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.connByUser[userID]
	return connID, ok
}
