package ws

import "sync"

// Registry maps authenticated user ids to their live connection. It is the
// single source of truth for who is online right now. One entry per user id:
// registering again replaces the previous handle without evicting its
// transport link (last writer wins, not multi-device fan-out).
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register binds userID to client, unconditionally replacing any existing
// mapping.
func (r *Registry) Register(userID string, client *Client) {
	r.mu.Lock()
	r.clients[userID] = client
	r.mu.Unlock()
}

// Lookup returns the connection registered for userID, or nil.
func (r *Registry) Lookup(userID string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[userID]
}

// Remove drops the mapping for userID, if any.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.clients, userID)
	r.mu.Unlock()
}

// Snapshot returns the currently registered connections, for fan-out.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
