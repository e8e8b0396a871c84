// Package hub is the realtime core: it owns live connection state, room
// membership, presence broadcast, and the routing of chat events
// between local connections and the cross-process relay.
package hub

import (
	"sort"
	"sync"

	"webchat-api/internal/models"
)

// Registry is the authoritative map of online user identity to live
// connection on this process. At most one open connection exists per
// user id; a newer connection supersedes the older one.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register inserts or replaces the entry for the client's user id and
// returns the superseded client, if any. Policy: evict-old-keep-new,
// matching single-active-session UX.
func (r *Registry) Register(c *Client) (evicted *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.clients[c.user.ID]
	r.clients[c.user.ID] = c
	if old == c {
		return nil
	}
	return old
}

// Unregister removes the entry only when it still points at c. The
// guard keeps a stale close callback from evicting a newer session for
// the same user.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clients[c.user.ID] != c {
		return false
	}
	delete(r.clients, c.user.ID)
	return true
}

// Lookup returns the live connection for a user id, used for direct
// message delivery.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// Snapshot returns a point-in-time copy of the online users, sorted by
// username so presence payloads are stable.
func (r *Registry) Snapshot() []models.PublicUser {
	r.mu.RLock()
	users := make([]models.PublicUser, 0, len(r.clients))
	for _, c := range r.clients {
		users = append(users, c.user.Public())
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// Clients returns a snapshot of every registered connection.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Len returns the number of online users on this process.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
