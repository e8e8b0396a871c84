// Package store is the persistence boundary. The realtime core and the
// HTTP handlers talk to this interface; only the postgres implementation
// knows about SQL.
package store

import (
	"context"
	"errors"
	"time"

	"webchat-api/internal/models"
)

// ErrDuplicate is returned when a unique constraint (username, room
// name) is violated.
var ErrDuplicate = errors.New("duplicate record")

// Store persists users, rooms, messages, direct messages, and block
// relations.
type Store interface {
	CreateUser(ctx context.Context, u models.User, passwordHash string) error
	FindUser(ctx context.Context, id string) (models.User, bool, error)
	FindUserByName(ctx context.Context, username string) (models.User, bool, error)

	ListRooms(ctx context.Context) ([]models.Room, error)
	FindRoomByName(ctx context.Context, name string) (models.Room, bool, error)
	CreateRoom(ctx context.Context, room models.Room) error
	RoomExists(ctx context.Context, roomID string) (bool, error)

	// SaveRoomMessage persists an already-sanitized message and returns
	// the stored record with its generated id and timestamp.
	SaveRoomMessage(ctx context.Context, senderID, roomID, content, attachmentURL string) (models.Message, error)
	ListRoomMessages(ctx context.Context, roomID string, before time.Time, limit int) ([]models.Message, error)

	SaveDirectMessage(ctx context.Context, senderID, receiverID, content, attachmentURL string) (models.DirectMessage, error)
	ListDirectMessages(ctx context.Context, userID string, limit int) ([]models.DirectMessage, error)
	ListConversation(ctx context.Context, userID, otherID string, limit int) ([]models.DirectMessage, error)
	MarkConversationRead(ctx context.Context, readerID, senderID string) error

	BlockUser(ctx context.Context, blockerID, blockedID string) error
	UnblockUser(ctx context.Context, blockerID, blockedID string) error
	ListBlockedUsers(ctx context.Context, blockerID string) ([]models.PublicUser, error)
	// IsBlocked reports whether blockerID has blocked blockedID.
	IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error)

	FindPasswordHash(ctx context.Context, username string) (string, bool, error)
}
