package realtime

import "sync"

// Registry maps a user ID to the ID of their single active connection.
//
// OWNERSHIP:
// The map is owned exclusively by this struct and mutated only through
// Register/Unregister; everything else is read-only. It lives for the whole
// process — presence is in-memory state and is deliberately not persisted
// (a restart simply means everyone is offline until they reconnect).
//
// At most one entry exists per user: a reconnect upserts the mapping and the
// previous connection's entry is silently replaced (last connection wins,
// no multi-device fan-out). The replaced connection itself is not closed —
// its registry entry is just orphaned until its own disconnect fires.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string // userID → connID
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]string)}
}

// Register records connID as the active connection for userID, replacing any
// previous entry.
func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = connID
}

// Unregister removes the entry for userID, but only if connID is still the
// one on file. It reports whether an entry was actually removed.
//
// The conditional check is what protects a reconnected user from a late
// disconnect event: when the OLD connection's close fires after a NEW
// connection has already re-registered, the stored connID no longer matches
// and the fresh entry is left intact.
func (r *Registry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == connID {
		delete(r.conns, userID)
		return true
	}
	return false
}

// ActiveConnection returns the connection ID currently on file for userID.
func (r *Registry) ActiveConnection(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.conns[userID]
	return connID, ok
}

// OnlineUsers returns the current key set. The slice is a fresh copy in map
// iteration order — callers must treat it as an unordered set.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	return users
}
