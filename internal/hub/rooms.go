package hub

import "sync"

// RoomTracker records which local connections are members of which
// rooms. Membership lives and dies with the connection; clients rejoin
// explicitly after a reconnect.
type RoomTracker struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	byClient map[*Client]map[string]struct{}
}

// NewRoomTracker creates an empty tracker.
func NewRoomTracker() *RoomTracker {
	return &RoomTracker{
		rooms:    make(map[string]map[*Client]struct{}),
		byClient: make(map[*Client]map[string]struct{}),
	}
}

// Join adds the connection to the room. Idempotent: joining twice
// leaves membership size unchanged.
func (t *RoomTracker) Join(c *Client, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	room, ok := t.rooms[roomID]
	if !ok {
		room = make(map[*Client]struct{})
		t.rooms[roomID] = room
	}
	room[c] = struct{}{}

	joined, ok := t.byClient[c]
	if !ok {
		joined = make(map[string]struct{})
		t.byClient[c] = joined
	}
	joined[roomID] = struct{}{}
}

// Leave removes the connection from the room. Idempotent.
func (t *RoomTracker) Leave(c *Client, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(c, roomID)
}

// remove must be called with the lock held.
func (t *RoomTracker) remove(c *Client, roomID string) {
	if room, ok := t.rooms[roomID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(t.rooms, roomID)
		}
	}
	if joined, ok := t.byClient[c]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(t.byClient, c)
		}
	}
}

// InRoom reports whether the connection has joined the room. Guards
// against sends spoofed into rooms never joined.
func (t *RoomTracker) InRoom(c *Client, roomID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byClient[c][roomID]
	return ok
}

// Members returns the local connections currently in the room.
func (t *RoomTracker) Members(roomID string) []*Client {
	t.mu.RLock()
	defer t.mu.RUnlock()

	room := t.rooms[roomID]
	out := make([]*Client, 0, len(room))
	for c := range room {
		out = append(out, c)
	}
	return out
}

// RoomsOf returns the rooms the connection has joined.
func (t *RoomTracker) RoomsOf(c *Client) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.byClient[c]))
	for roomID := range t.byClient[c] {
		out = append(out, roomID)
	}
	return out
}

// DropClient removes the connection from every room it joined and
// returns those room ids so the caller can announce the departures.
func (t *RoomTracker) DropClient(c *Client) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	rooms := make([]string, 0, len(t.byClient[c]))
	for roomID := range t.byClient[c] {
		rooms = append(rooms, roomID)
	}
	for _, roomID := range rooms {
		t.remove(c, roomID)
	}
	return rooms
}
