package hub

import (
	"testing"

	"webchat-api/internal/models"
)

func trackerClient(h *Hub, id string) *Client {
	return NewClient(h, nil, models.User{ID: id, Username: id})
}

func TestTrackerJoinIsIdempotent(t *testing.T) {
	h, _, _ := newTestHub()
	tr := NewRoomTracker()
	c := trackerClient(h, "u1")

	tr.Join(c, "r1")
	tr.Join(c, "r1")

	if got := len(tr.Members("r1")); got != 1 {
		t.Errorf("membership size = %d, want 1", got)
	}
	if !tr.InRoom(c, "r1") {
		t.Error("InRoom = false after join")
	}
}

func TestTrackerLeaveIsIdempotent(t *testing.T) {
	h, _, _ := newTestHub()
	tr := NewRoomTracker()
	c := trackerClient(h, "u1")

	tr.Join(c, "r1")
	tr.Leave(c, "r1")
	tr.Leave(c, "r1")

	if tr.InRoom(c, "r1") {
		t.Error("still a member after leave")
	}
	if got := len(tr.Members("r1")); got != 0 {
		t.Errorf("membership size = %d, want 0", got)
	}
}

func TestTrackerMembersIsPerRoom(t *testing.T) {
	h, _, _ := newTestHub()
	tr := NewRoomTracker()
	a := trackerClient(h, "a")
	b := trackerClient(h, "b")

	tr.Join(a, "r1")
	tr.Join(b, "r1")
	tr.Join(b, "r2")

	if got := len(tr.Members("r1")); got != 2 {
		t.Errorf("r1 members = %d, want 2", got)
	}
	if got := len(tr.Members("r2")); got != 1 {
		t.Errorf("r2 members = %d, want 1", got)
	}
	if tr.InRoom(a, "r2") {
		t.Error("a should not be in r2")
	}
}

func TestTrackerDropClient(t *testing.T) {
	h, _, _ := newTestHub()
	tr := NewRoomTracker()
	a := trackerClient(h, "a")
	b := trackerClient(h, "b")

	tr.Join(a, "r1")
	tr.Join(a, "r2")
	tr.Join(b, "r1")

	rooms := tr.DropClient(a)
	if len(rooms) != 2 {
		t.Fatalf("DropClient returned %d rooms, want 2", len(rooms))
	}
	if tr.InRoom(a, "r1") || tr.InRoom(a, "r2") {
		t.Error("dropped client still a member")
	}
	if !tr.InRoom(b, "r1") {
		t.Error("other client's membership must survive")
	}
	if got := len(tr.RoomsOf(a)); got != 0 {
		t.Errorf("RoomsOf after drop = %d, want 0", got)
	}
}
