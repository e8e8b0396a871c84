// Package models defines the data structures shared across the service.
package models

import "time"

// User is a registered (possibly anonymous) chat user.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Age       int       `json:"age"`
	Sex       string    `json:"sex"`     // "F" or "M"
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser carries the fields of a user that are safe to broadcast,
// used for presence and room member lists.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Age      int    `json:"age,omitempty"`
	Sex      string `json:"sex,omitempty"`
}

// Public strips a User down to its broadcastable fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Age: u.Age, Sex: u.Sex}
}

// Room is a named chat room.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is a persisted room message. Username is denormalized so
// clients can render without a second lookup.
type Message struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	RoomID        string    `json:"roomId"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DirectMessage is a persisted one-to-one message.
type DirectMessage struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	SenderID      string    `json:"senderId"`
	SenderName    string    `json:"senderName"`
	ReceiverID    string    `json:"receiverId"`
	ReceiverName  string    `json:"receiverName"`
	AttachmentURL string    `json:"attachmentUrl,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}
