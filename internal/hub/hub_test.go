package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"webchat-api/internal/models"
	"webchat-api/internal/protocol"
	"webchat-api/internal/relay"
)

// fakeStore is an in-memory Store for hub tests. Only the operations
// the realtime core touches have behavior; the rest satisfy the
// interface.
type fakeStore struct {
	mu            sync.Mutex
	rooms         map[string]bool
	blockedPairs  map[[2]string]bool // [blocker, blocked]
	savedMessages []models.Message
	savedDMs      []models.DirectMessage
	failSave      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:        make(map[string]bool),
		blockedPairs: make(map[[2]string]bool),
	}
}

func (s *fakeStore) RoomExists(_ context.Context, roomID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[roomID], nil
}

func (s *fakeStore) SaveRoomMessage(_ context.Context, senderID, roomID, content, attachmentURL string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return models.Message{}, errors.New("store unavailable")
	}
	m := models.Message{
		ID:            "m1",
		Content:       content,
		UserID:        senderID,
		Username:      senderID, // tests register users whose id doubles as name
		RoomID:        roomID,
		AttachmentURL: attachmentURL,
		CreatedAt:     time.Now(),
	}
	s.savedMessages = append(s.savedMessages, m)
	return m, nil
}

func (s *fakeStore) SaveDirectMessage(_ context.Context, senderID, receiverID, content, attachmentURL string) (models.DirectMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return models.DirectMessage{}, errors.New("store unavailable")
	}
	m := models.DirectMessage{
		ID:         "d1",
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now(),
	}
	s.savedDMs = append(s.savedDMs, m)
	return m, nil
}

func (s *fakeStore) IsBlocked(_ context.Context, blockerID, blockedID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockedPairs[[2]string{blockerID, blockedID}], nil
}

func (s *fakeStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.savedMessages)
}

func (s *fakeStore) dmCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.savedDMs)
}

// Unused by the realtime core.
func (s *fakeStore) CreateUser(context.Context, models.User, string) error { return nil }
func (s *fakeStore) FindUser(context.Context, string) (models.User, bool, error) {
	return models.User{}, false, nil
}
func (s *fakeStore) FindUserByName(context.Context, string) (models.User, bool, error) {
	return models.User{}, false, nil
}
func (s *fakeStore) ListRooms(context.Context) ([]models.Room, error) { return nil, nil }
func (s *fakeStore) FindRoomByName(context.Context, string) (models.Room, bool, error) {
	return models.Room{}, false, nil
}
func (s *fakeStore) CreateRoom(context.Context, models.Room) error { return nil }
func (s *fakeStore) ListRoomMessages(context.Context, string, time.Time, int) ([]models.Message, error) {
	return nil, nil
}
func (s *fakeStore) ListDirectMessages(context.Context, string, int) ([]models.DirectMessage, error) {
	return nil, nil
}
func (s *fakeStore) ListConversation(context.Context, string, string, int) ([]models.DirectMessage, error) {
	return nil, nil
}
func (s *fakeStore) MarkConversationRead(context.Context, string, string) error { return nil }
func (s *fakeStore) BlockUser(context.Context, string, string) error            { return nil }
func (s *fakeStore) UnblockUser(context.Context, string, string) error          { return nil }
func (s *fakeStore) ListBlockedUsers(context.Context, string) ([]models.PublicUser, error) {
	return nil, nil
}
func (s *fakeStore) FindPasswordHash(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// fakeRelay records published envelopes instead of crossing processes.
type fakeRelay struct {
	mu          sync.Mutex
	envelopes   []relay.Envelope
	failPublish bool
}

func (r *fakeRelay) Publish(_ context.Context, env relay.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPublish {
		return errors.New("relay unavailable")
	}
	r.envelopes = append(r.envelopes, env)
	return nil
}

func (r *fakeRelay) Subscribe(context.Context, ...string) (<-chan relay.Envelope, error) {
	ch := make(chan relay.Envelope)
	return ch, nil
}

func (r *fakeRelay) Close() error { return nil }

func (r *fakeRelay) published(channel string) []relay.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []relay.Envelope
	for _, e := range r.envelopes {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

func newTestHub() (*Hub, *fakeStore, *fakeRelay) {
	st := newFakeStore()
	rl := &fakeRelay{}
	return New(st, rl, 100), st, rl
}

// newTestClient attaches a connection-less client; hub logic is
// exercised through handleFrame directly.
func newTestClient(h *Hub, id string) *Client {
	c := NewClient(h, nil, models.User{ID: id, Username: id})
	h.Attach(c)
	return c
}

// nextFrame pops the next queued frame for the client.
func nextFrame(t *testing.T, c *Client) protocol.Frame {
	t.Helper()
	select {
	case b := <-c.send:
		f, err := protocol.Decode(b)
		if err != nil {
			t.Fatalf("queued frame does not decode: %v", err)
		}
		return f
	default:
		t.Fatal("no frame queued")
		return protocol.Frame{}
	}
}

// drainFrames discards everything queued for the client so a test can
// assert on what happens next.
func drainFrames(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func queuedFrames(t *testing.T, c *Client) []protocol.Frame {
	t.Helper()
	var out []protocol.Frame
	for {
		select {
		case b := <-c.send:
			f, err := protocol.Decode(b)
			if err != nil {
				t.Fatalf("queued frame does not decode: %v", err)
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func mustPayload[T any](t *testing.T, f protocol.Frame) T {
	t.Helper()
	var p T
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		t.Fatalf("unmarshal %s payload: %v", f.Type, err)
	}
	return p
}

func sendFrame(t *testing.T, h *Hub, c *Client, typ protocol.FrameType, payload any) {
	t.Helper()
	f, err := protocol.NewFrame(typ, payload)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	h.handleFrame(c, f)
}
