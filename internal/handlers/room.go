package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"webchat-api/internal/service"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// RoomHandler serves the room list and per-room message history.
type RoomHandler struct {
	svc *service.ChatService
}

func NewRoomHandler(s *service.ChatService) *RoomHandler { return &RoomHandler{svc: s} }

type createRoomRequest struct {
	Name string `json:"name"`
}

// List returns every room.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.ListRooms(r.Context())
	if err != nil {
		log.Printf("List rooms error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// Create returns the room with the requested name, creating it when it
// does not exist yet.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in createRoomRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	name := strings.TrimSpace(in.Name)
	if err := validateRoomName(name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := h.svc.GetOrCreateRoom(r.Context(), name)
	if err != nil {
		log.Printf("Create room error (name=%s): %v", name, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"room": room})
}

// Messages returns room history, oldest first. "before" pages
// backwards; "limit" caps the page size.
func (h *RoomHandler) Messages(w http.ResponseWriter, r *http.Request) {
	roomID := normalizeID(chi.URLParam(r, "roomId"))
	if err := validateRoomID(roomID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	before := time.Now().UTC()
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = t
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	msgs, err := h.svc.RoomMessages(r.Context(), roomID, before, limit)
	if err != nil {
		if err == service.ErrRoomNotFound {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Room messages error (roomId=%s): %v", roomID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}
