package hub

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"webchat-api/internal/models"
	"webchat-api/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second // must be less than pongWait
	sendBufferSize = 256
)

// CloseSessionReplaced is the close code sent to a connection that was
// superseded by a newer session for the same user.
const CloseSessionReplaced = 4002

// Client is one live authenticated connection. Inbound frames are
// processed sequentially by its read pump, so per-connection handler
// code never interleaves.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	user models.User

	closeOnce sync.Once
}

// NewClient wraps an upgraded connection. conn may be nil in tests that
// drive the router directly.
func NewClient(h *Hub, conn *websocket.Conn, user models.User) *Client {
	return &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		user: user,
	}
}

// User returns the identity bound to this connection.
func (c *Client) User() models.User { return c.user }

// enqueue queues an encoded frame for delivery. A client that cannot
// keep up has its frames dropped rather than blocking the sender.
func (c *Client) enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		log.Printf("client %s send buffer full, dropping frame", c.user.ID)
	}
}

// enqueueFrame encodes and queues a frame.
func (c *Client) enqueueFrame(f protocol.Frame) {
	b, err := f.Encode()
	if err != nil {
		log.Printf("client %s: encode %s frame: %v", c.user.ID, f.Type, err)
		return
	}
	c.enqueue(b)
}

// sendError queues an ERROR frame. Validation failures never tear the
// connection down.
func (c *Client) sendError(msg string) {
	c.enqueueFrame(protocol.ErrorOf(msg))
}

// closeWithCode sends a close frame with the given code, then closes
// the connection.
func (c *Client) closeWithCode(code int, reason string) {
	c.closeOnce.Do(func() {
		if c.conn == nil {
			return
		}
		deadline := time.Now().Add(writeWait)
		msg := websocket.FormatCloseMessage(code, reason)
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			log.Printf("client %s: write close: %v", c.user.ID, err)
		}
		_ = c.conn.Close()
	})
}

// readPump reads frames until the socket closes and hands each one to
// the hub's router. It runs in its own goroutine; cleanup happens here
// exactly once per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("client %s: read error: %v", c.user.ID, err)
			}
			return
		}

		frame, err := protocol.Decode(raw)
		if err != nil {
			c.sendError("invalid frame")
			continue
		}
		c.hub.handleFrame(c, frame)
	}
}

// writePump drains the send queue onto the socket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
