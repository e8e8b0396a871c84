package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"webchat-api/internal/models"
	"webchat-api/internal/protocol"
	"webchat-api/internal/relay"
)

// handleFrame routes one inbound frame. Bad frames produce ERROR
// replies; the connection always survives them. Reserved kinds are
// accepted and ignored so newer clients keep working against this
// server.
func (h *Hub) handleFrame(c *Client, f protocol.Frame) {
	ctx := context.Background()

	switch f.Type {
	case protocol.JoinRoom:
		h.handleJoinRoom(ctx, c, f.Payload)
	case protocol.LeaveRoom:
		h.handleLeaveRoom(c, f.Payload)
	case protocol.SendMsg:
		h.handleSendMessage(ctx, c, f.Payload)
	case protocol.SendDM:
		h.handleSendDM(ctx, c, f.Payload)
	case protocol.WebRTCOffer, protocol.WebRTCAnswer, protocol.WebRTCIce:
		// Signaling placeholders: accepted, not yet implemented.
	default:
		c.sendError(fmt.Sprintf("unknown message type %q", f.Type))
	}
}

func (h *Hub) handleJoinRoom(ctx context.Context, c *Client, raw json.RawMessage) {
	var p protocol.JoinRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.RoomID) == "" {
		c.sendError("roomId is required")
		return
	}
	roomID := strings.TrimSpace(p.RoomID)

	exists, err := h.store.RoomExists(ctx, roomID)
	if err != nil {
		log.Printf("hub: room lookup failed (roomId=%s): %v", roomID, err)
		c.sendError("internal error")
		return
	}
	if !exists {
		c.sendError("room not found")
		return
	}

	// Idempotent: a repeated join re-announces but does not duplicate
	// membership.
	h.tracker.Join(c, roomID)

	h.publish(relay.ChannelUserJoined, roomID, protocol.MustFrame(protocol.UserJoined, protocol.UserEventPayload{
		UserID:   c.user.ID,
		Username: c.user.Username,
		RoomID:   roomID,
	}))

	// Private reply: the newcomer gets the current member list; the
	// members learn about the newcomer via the relayed USER_JOINED.
	list := protocol.RoomUsersPayload{RoomID: roomID, Users: []models.PublicUser{}}
	for _, m := range h.tracker.Members(roomID) {
		if m == c {
			continue
		}
		list.Users = append(list.Users, m.user.Public())
	}
	c.enqueueFrame(protocol.MustFrame(protocol.RoomUsers, list))
}

func (h *Hub) handleLeaveRoom(c *Client, raw json.RawMessage) {
	var p protocol.LeaveRoomPayload
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.RoomID) == "" {
		c.sendError("roomId is required")
		return
	}
	roomID := strings.TrimSpace(p.RoomID)

	h.tracker.Leave(c, roomID)

	// The client has already left locally; a publish failure is logged
	// inside publish and never surfaced.
	h.publish(relay.ChannelUserLeft, roomID, protocol.MustFrame(protocol.UserLeft, protocol.UserEventPayload{
		UserID:   c.user.ID,
		Username: c.user.Username,
		RoomID:   roomID,
	}))
}

func (h *Hub) handleSendMessage(ctx context.Context, c *Client, raw json.RawMessage) {
	var p protocol.SendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("message content is required")
		return
	}
	roomID := strings.TrimSpace(p.RoomID)
	content := strings.TrimSpace(p.Content)

	switch {
	case roomID == "":
		c.sendError("roomId is required")
		return
	case content == "":
		c.sendError("message cannot be empty")
		return
	case len(content) > h.maxMessageLen:
		c.sendError(fmt.Sprintf("message too long (max %d characters)", h.maxMessageLen))
		return
	case !h.tracker.InRoom(c, roomID):
		c.sendError("not in room")
		return
	}

	// Sanitize exactly once, at the boundary. Stored and transmitted
	// content are the same escaped bytes.
	sanitized := protocol.SanitizeHTML(content)

	msg, err := h.store.SaveRoomMessage(ctx, c.user.ID, roomID, sanitized, p.AttachmentURL)
	if err != nil {
		log.Printf("hub: persist room message failed (roomId=%s, userId=%s): %v", roomID, c.user.ID, err)
		c.sendError("internal error")
		return
	}

	// Publish carries the stored record so every recipient, including
	// the sender's other sessions, sees the canonical version.
	h.publish(relay.ChannelRoomMessage, roomID, protocol.MustFrame(protocol.MessageReceived, protocol.MessageReceivedPayload{
		Message: msg,
	}))
}

func (h *Hub) handleSendDM(ctx context.Context, c *Client, raw json.RawMessage) {
	var p protocol.SendDMPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		c.sendError("message content is required")
		return
	}
	receiverID := strings.TrimSpace(p.ReceiverID)
	content := strings.TrimSpace(p.Content)

	switch {
	case receiverID == "":
		c.sendError("receiverId is required")
		return
	case content == "":
		c.sendError("message cannot be empty")
		return
	case len(content) > h.maxMessageLen:
		c.sendError(fmt.Sprintf("message too long (max %d characters)", h.maxMessageLen))
		return
	}

	blocked, err := h.store.IsBlocked(ctx, receiverID, c.user.ID)
	if err != nil {
		log.Printf("hub: block check failed (sender=%s, receiver=%s): %v", c.user.ID, receiverID, err)
		c.sendError("internal error")
		return
	}
	if blocked {
		c.sendError("you cannot send messages to this user")
		return
	}

	sanitized := protocol.SanitizeHTML(content)

	dm, err := h.store.SaveDirectMessage(ctx, c.user.ID, receiverID, sanitized, p.AttachmentURL)
	if err != nil {
		log.Printf("hub: persist direct message failed (sender=%s, receiver=%s): %v", c.user.ID, receiverID, err)
		c.sendError("internal error")
		return
	}

	frame := protocol.MustFrame(protocol.DMReceived, protocol.DMReceivedPayload{Message: dm})

	// Route to the receiver wherever their process is; echo directly to
	// the sender, who is not a subscriber of their own outgoing key.
	h.publish(relay.ChannelDirectMessage, receiverID, frame)
	c.enqueueFrame(frame)
}
