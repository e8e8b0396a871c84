package hub

import (
	"context"
	"log"

	"webchat-api/internal/protocol"
	"webchat-api/internal/relay"
	"webchat-api/internal/store"
)

// Hub wires the connection registry, the room tracker, the persistence
// store, and the relay into one realtime core per process.
type Hub struct {
	store         store.Store
	relay         relay.Relay
	registry      *Registry
	tracker       *RoomTracker
	maxMessageLen int
}

// New creates a Hub. maxMessageLen bounds chat content length after
// trimming.
func New(st store.Store, rl relay.Relay, maxMessageLen int) *Hub {
	return &Hub{
		store:         st,
		relay:         rl,
		registry:      NewRegistry(),
		tracker:       NewRoomTracker(),
		maxMessageLen: maxMessageLen,
	}
}

// Registry exposes the connection registry, mainly for tests and
// diagnostics.
func (h *Hub) Registry() *Registry { return h.registry }

// Run subscribes to the relay and dispatches incoming envelopes to
// local connections until ctx is cancelled. One dispatch loop per
// process keeps relay delivery decoupled from handler reentrancy.
func (h *Hub) Run(ctx context.Context) error {
	envs, err := h.relay.Subscribe(ctx, relay.Channels...)
	if err != nil {
		return err
	}
	log.Printf("hub: subscribed to relay channels %v", relay.Channels)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-envs:
			if !ok {
				return nil
			}
			h.dispatch(env)
		}
	}
}

// dispatch fans one relay envelope out to the matching local
// connections.
func (h *Hub) dispatch(env relay.Envelope) {
	switch env.Channel {
	case relay.ChannelRoomMessage, relay.ChannelUserJoined, relay.ChannelUserLeft:
		b, err := env.Frame.Encode()
		if err != nil {
			log.Printf("hub: encode relayed frame: %v", err)
			return
		}
		for _, c := range h.tracker.Members(env.RoutingKey) {
			c.enqueue(b)
		}
	case relay.ChannelDirectMessage:
		if c, ok := h.registry.Lookup(env.RoutingKey); ok {
			c.enqueueFrame(env.Frame)
		}
	default:
		log.Printf("hub: envelope on unexpected channel %q", env.Channel)
	}
}

// Attach registers a freshly authenticated connection, announces the
// new presence, and starts the connection's pumps. A previous session
// for the same user is evicted and closed.
func (h *Hub) Attach(c *Client) {
	if evicted := h.registry.Register(c); evicted != nil {
		evicted.closeWithCode(CloseSessionReplaced, "session replaced by a newer connection")
	}
	h.broadcastPresence()
	log.Printf("hub: user %s (%s) connected, online=%d", c.user.Username, c.user.ID, h.registry.Len())

	if c.conn != nil {
		go c.writePump()
		go c.readPump()
	}
}

// detach is called once when a connection's read pump exits. It
// announces the departure from every joined room, unregisters the
// connection, and rebroadcasts presence.
func (h *Hub) detach(c *Client) {
	for _, roomID := range h.tracker.DropClient(c) {
		h.publish(relay.ChannelUserLeft, roomID, protocol.MustFrame(protocol.UserLeft, protocol.UserEventPayload{
			UserID:   c.user.ID,
			Username: c.user.Username,
			RoomID:   roomID,
		}))
	}

	// The guard keeps a stale close from evicting a newer session.
	if h.registry.Unregister(c) {
		h.broadcastPresence()
		log.Printf("hub: user %s (%s) disconnected, online=%d", c.user.Username, c.user.ID, h.registry.Len())
	}
}

// broadcastPresence pushes the full online-user list to every
// registered connection. Presence is global, not room-scoped.
func (h *Hub) broadcastPresence() {
	frame := protocol.MustFrame(protocol.OnlineUsers, protocol.OnlineUsersPayload{
		Users: h.registry.Snapshot(),
	})
	b, err := frame.Encode()
	if err != nil {
		log.Printf("hub: encode presence frame: %v", err)
		return
	}
	for _, c := range h.registry.Clients() {
		c.enqueue(b)
	}
}

// publish sends an envelope to the relay. Failures are logged and
// swallowed: the write (if any) already succeeded, and distribution
// must not appear to fail to the writer.
func (h *Hub) publish(channel, routingKey string, frame protocol.Frame) {
	env := relay.Envelope{Channel: channel, RoutingKey: routingKey, Frame: frame}
	if err := h.relay.Publish(context.Background(), env); err != nil {
		log.Printf("hub: publish to %s (key=%s) failed: %v", channel, routingKey, err)
	}
}
