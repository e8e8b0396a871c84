package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"webchat-api/internal/models"
	"webchat-api/internal/service"
)

// DMHandler serves direct-message history and the block list.
type DMHandler struct {
	svc *service.ChatService
}

func NewDMHandler(s *service.ChatService) *DMHandler { return &DMHandler{svc: s} }

// List returns the caller's recent direct messages across all
// conversations.
func (h *DMHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	msgs, err := h.svc.RecentDirectMessages(r.Context(), id.UserID)
	if err != nil {
		log.Printf("List DMs error (userId=%s): %v", id.UserID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Conversation returns the history with one user and marks the inbound
// half read.
func (h *DMHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	otherID := normalizeID(chi.URLParam(r, "userId"))
	if err := validateUserID(otherID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := h.svc.Conversation(r.Context(), id.UserID, otherID)
	if err != nil {
		log.Printf("Conversation error (userId=%s, otherId=%s): %v", id.UserID, otherID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Block stops the named user from sending the caller direct messages.
func (h *DMHandler) Block(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	otherID := normalizeID(chi.URLParam(r, "userId"))
	if err := validateUserID(otherID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Block(r.Context(), id.UserID, otherID); err != nil {
		if err == service.ErrSelfBlock {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Block error (userId=%s, otherId=%s): %v", id.UserID, otherID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Unblock removes a block. Unblocking someone who was never blocked
// still succeeds.
func (h *DMHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	otherID := normalizeID(chi.URLParam(r, "userId"))
	if err := validateUserID(otherID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Unblock(r.Context(), id.UserID, otherID); err != nil {
		log.Printf("Unblock error (userId=%s, otherId=%s): %v", id.UserID, otherID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Blocked lists everyone the caller has blocked.
func (h *DMHandler) Blocked(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.svc.BlockedUsers(r.Context(), id.UserID)
	if err != nil {
		log.Printf("Blocked list error (userId=%s): %v", id.UserID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}
