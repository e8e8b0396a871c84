// Package relay is the cross-process fan-out bus. Events published on a
// channel reach every subscribing process, which then delivers them to
// its own local connections.
package relay

import (
	"context"

	"webchat-api/internal/protocol"
)

// Channel names. Each carries a routing key: a room id for room
// channels, a receiver user id for direct messages.
const (
	ChannelRoomMessage   = "room:message"
	ChannelUserJoined    = "user:joined"
	ChannelUserLeft      = "user:left"
	ChannelDirectMessage = "dm:message"
)

// Channels lists every channel a chat process subscribes to.
var Channels = []string{
	ChannelRoomMessage,
	ChannelUserJoined,
	ChannelUserLeft,
	ChannelDirectMessage,
}

// Envelope wraps an outbound frame with its routing key for transport
// over the bus. Envelopes are transient and never persisted.
type Envelope struct {
	Channel    string         `json:"-"`
	RoutingKey string         `json:"routingKey"`
	Frame      protocol.Frame `json:"frame"`
}

// Relay publishes envelopes and delivers envelopes published by any
// process (including this one).
type Relay interface {
	// Publish is best-effort: a failure is the caller's to log, never
	// to surface to the originating client.
	Publish(ctx context.Context, env Envelope) error
	// Subscribe returns a channel of envelopes for the given bus
	// channels. The returned Go channel closes when ctx is cancelled.
	Subscribe(ctx context.Context, channels ...string) (<-chan Envelope, error)
	Close() error
}
