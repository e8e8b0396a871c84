package handlers

import (
	"log"
	"net/http"
	"strings"

	"webchat-api/internal/service"
)

// AuthHandler serves login and token verification.
type AuthHandler struct {
	svc *service.ChatService
}

func NewAuthHandler(s *service.ChatService) *AuthHandler { return &AuthHandler{svc: s} }

type loginRequest struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
	Sex      string `json:"sex"`
	Country  string `json:"country"`
	Password string `json:"password,omitempty"`
}

func (r loginRequest) validate() error {
	if err := validateUsername(r.Username); err != nil {
		return err
	}
	if err := validateAge(r.Age); err != nil {
		return err
	}
	if err := validateSex(r.Sex); err != nil {
		return err
	}
	if r.Password != "" {
		return validatePassword(r.Password)
	}
	return nil
}

// Login registers or signs in a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := in.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.svc.Login(r.Context(), in.Username, in.Age, in.Sex, strings.TrimSpace(in.Country), in.Password)
	if err != nil {
		switch err {
		case service.ErrUsernameTaken:
			respondError(w, http.StatusConflict, err.Error())
		case service.ErrInvalidCredentials:
			respondError(w, http.StatusUnauthorized, err.Error())
		default:
			log.Printf("Login error (username=%s): %v", in.Username, err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Verify resolves the caller's token back to the stored account. The
// client calls this on page load to restore a session.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.svc.VerifyUser(r.Context(), id.UserID)
	if err != nil {
		if err == service.ErrUserNotFound {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Verify error (userId=%s): %v", id.UserID, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
