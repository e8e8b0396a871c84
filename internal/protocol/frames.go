// Package protocol defines the typed frames exchanged over a live
// connection and the envelope format used on the pub/sub relay.
package protocol

import (
	"encoding/json"
	"fmt"

	"webchat-api/internal/models"
)

// FrameType enumerates every frame kind on the wire. Adding a kind here
// forces the router's switch to take a position on it.
type FrameType string

// Inbound frame kinds.
const (
	JoinRoom  FrameType = "JOIN_ROOM"
	LeaveRoom FrameType = "LEAVE_ROOM"
	SendMsg   FrameType = "SEND_MESSAGE"
	SendDM    FrameType = "SEND_DM"
)

// Outbound frame kinds.
const (
	MessageReceived FrameType = "MESSAGE_RECEIVED"
	OnlineUsers     FrameType = "ONLINE_USERS"
	UserJoined      FrameType = "USER_JOINED"
	UserLeft        FrameType = "USER_LEFT"
	RoomUsers       FrameType = "ROOM_USERS"
	DMReceived      FrameType = "DM_RECEIVED"
	ErrorFrame      FrameType = "ERROR"
)

// Reserved kinds for WebRTC signaling. Accepted and ignored so older
// servers stay compatible with newer clients.
const (
	WebRTCOffer  FrameType = "WEBRTC_OFFER"
	WebRTCAnswer FrameType = "WEBRTC_ANSWER"
	WebRTCIce    FrameType = "WEBRTC_ICE_CANDIDATE"
)

// Frame is one discrete typed message. The payload stays raw until the
// type is known.
type Frame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewFrame builds a frame from a payload struct.
func NewFrame(t FrameType, payload any) (Frame, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Frame{Type: t, Payload: b}, nil
}

// MustFrame is NewFrame for payloads that cannot fail to marshal
// (structs of plain fields). It panics otherwise.
func MustFrame(t FrameType, payload any) Frame {
	f, err := NewFrame(t, payload)
	if err != nil {
		panic(err)
	}
	return f
}

// ErrorOf builds an ERROR frame with the given message.
func ErrorOf(msg string) Frame {
	return MustFrame(ErrorFrame, ErrorPayload{Message: msg})
}

// Encode serializes the frame for the wire.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// Decode parses a raw client message into a frame.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if f.Type == "" {
		return Frame{}, fmt.Errorf("decode frame: missing type")
	}
	return f, nil
}

// JoinRoomPayload asks to join a room.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// LeaveRoomPayload asks to leave a room.
type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

// SendMessagePayload carries a room message from a client.
type SendMessagePayload struct {
	RoomID        string `json:"roomId"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

// SendDMPayload carries a direct message from a client.
type SendDMPayload struct {
	ReceiverID    string `json:"receiverId"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

// MessageReceivedPayload delivers the canonical stored room message.
type MessageReceivedPayload struct {
	Message models.Message `json:"message"`
}

// DMReceivedPayload delivers the canonical stored direct message.
type DMReceivedPayload struct {
	Message models.DirectMessage `json:"message"`
}

// UserEventPayload announces a user joining or leaving a room.
type UserEventPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}

// RoomUsersPayload lists the current members of a room. Sent privately
// to a connection that just joined.
type RoomUsersPayload struct {
	RoomID string              `json:"roomId"`
	Users  []models.PublicUser `json:"users"`
}

// OnlineUsersPayload is the global presence list, pushed to every
// connection on any connect or disconnect.
type OnlineUsersPayload struct {
	Users []models.PublicUser `json:"users"`
}

// ErrorPayload reports a recoverable failure to the client.
type ErrorPayload struct {
	Message string `json:"message"`
}
