// Package service holds the request/response business logic behind the
// HTTP API: accounts, rooms, history, and block management. The
// realtime path does not go through here.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"webchat-api/internal/auth"
	"webchat-api/internal/idgen"
	"webchat-api/internal/models"
	"webchat-api/internal/store"
)

const (
	dmListLimit       = 100
	conversationLimit = 50
)

// ChatService provides account, room, and direct-message operations.
type ChatService struct {
	store    store.Store
	verifier *auth.Verifier
}

// NewChatService creates a ChatService.
func NewChatService(st store.Store, v *auth.Verifier) *ChatService {
	return &ChatService{store: st, verifier: v}
}

// Login signs a user in. Unknown usernames are registered on the spot
// (anonymous users); a known username is only accepted when it has a
// password and the caller supplies the matching one.
func (s *ChatService) Login(ctx context.Context, username string, age int, sex, country, password string) (models.User, string, error) {
	existing, found, err := s.store.FindUserByName(ctx, username)
	if err != nil {
		return models.User{}, "", fmt.Errorf("find user: %w", err)
	}

	if found {
		hash, _, err := s.store.FindPasswordHash(ctx, username)
		if err != nil {
			return models.User{}, "", fmt.Errorf("find password: %w", err)
		}
		if hash == "" || password == "" {
			return models.User{}, "", ErrUsernameTaken
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			return models.User{}, "", ErrInvalidCredentials
		}
		token, err := s.mintToken(existing)
		return existing, token, err
	}

	user := models.User{
		ID:        idgen.NewULID(),
		Username:  username,
		Age:       age,
		Sex:       sex,
		Country:   country,
		CreatedAt: time.Now().UTC(),
	}

	var passwordHash string
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, "", fmt.Errorf("hash password: %w", err)
		}
		passwordHash = string(h)
	}

	if err := s.store.CreateUser(ctx, user, passwordHash); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, "", ErrUsernameTaken
		}
		return models.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.mintToken(user)
	return user, token, err
}

func (s *ChatService) mintToken(u models.User) (string, error) {
	token, err := s.verifier.Sign(auth.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return token, nil
}

// VerifyUser resolves a verified token subject to the stored user.
func (s *ChatService) VerifyUser(ctx context.Context, userID string) (models.User, error) {
	u, found, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if !found {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// ListRooms returns every room, newest first.
func (s *ChatService) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.store.ListRooms(ctx)
}

// GetOrCreateRoom returns the room with the given (already validated)
// name, creating it when missing.
func (s *ChatService) GetOrCreateRoom(ctx context.Context, name string) (models.Room, error) {
	room, found, err := s.store.FindRoomByName(ctx, name)
	if err != nil {
		return models.Room{}, fmt.Errorf("find room: %w", err)
	}
	if found {
		return room, nil
	}

	room = models.Room{ID: idgen.NewULID(), Name: name, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost a create race; the other writer's room wins.
			room, found, err = s.store.FindRoomByName(ctx, name)
			if err == nil && found {
				return room, nil
			}
		}
		return models.Room{}, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// RoomMessages returns room history, oldest first.
func (s *ChatService) RoomMessages(ctx context.Context, roomID string, before time.Time, limit int) ([]models.Message, error) {
	exists, err := s.store.RoomExists(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("room exists: %w", err)
	}
	if !exists {
		return nil, ErrRoomNotFound
	}
	return s.store.ListRoomMessages(ctx, roomID, before, limit)
}

// RecentDirectMessages returns the user's latest DMs across all
// conversations.
func (s *ChatService) RecentDirectMessages(ctx context.Context, userID string) ([]models.DirectMessage, error) {
	return s.store.ListDirectMessages(ctx, userID, dmListLimit)
}

// Conversation returns the DM history with one user and marks the
// inbound half read.
func (s *ChatService) Conversation(ctx context.Context, userID, otherID string) ([]models.DirectMessage, error) {
	msgs, err := s.store.ListConversation(ctx, userID, otherID, conversationLimit)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	if err := s.store.MarkConversationRead(ctx, userID, otherID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return msgs, nil
}

// Block records that userID no longer wants messages from otherID.
func (s *ChatService) Block(ctx context.Context, userID, otherID string) error {
	if userID == otherID {
		return ErrSelfBlock
	}
	return s.store.BlockUser(ctx, userID, otherID)
}

// Unblock removes a block relation. Unblocking a user who was never
// blocked is a no-op.
func (s *ChatService) Unblock(ctx context.Context, userID, otherID string) error {
	return s.store.UnblockUser(ctx, userID, otherID)
}

// BlockedUsers lists everyone userID has blocked.
func (s *ChatService) BlockedUsers(ctx context.Context, userID string) ([]models.PublicUser, error) {
	return s.store.ListBlockedUsers(ctx, userID)
}
