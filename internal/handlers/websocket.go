package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"webchat-api/internal/auth"
	"webchat-api/internal/hub"
	"webchat-api/internal/store"
)

// closeUnauthorized is sent when the websocket handshake carries no
// valid token. Distinct from a normal close so clients can tell a
// rejected session from a dropped one.
const closeUnauthorized = 4001

// WebSocketHandler authenticates websocket handshakes and hands
// accepted connections to the hub.
type WebSocketHandler struct {
	verifier *auth.Verifier
	store    store.Store
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a WebSocketHandler. allowedOrigins
// mirrors the CORS configuration; "*" disables the origin check.
func NewWebSocketHandler(v *auth.Verifier, st store.Store, h *hub.Hub, allowedOrigins []string) *WebSocketHandler {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &WebSocketHandler{
		verifier: v,
		store:    st,
		hub:      h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// Handle upgrades the connection and verifies the caller before any
// frame is exchanged. Auth failures close the socket with a policy
// code instead of a normal closure.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	id, err := h.verifier.Verify(token)
	if err != nil {
		rejectConn(conn, "unauthorized")
		return
	}

	user, found, err := h.store.FindUser(r.Context(), id.UserID)
	if err != nil {
		log.Printf("WebSocket user lookup error (userId=%s): %v", id.UserID, err)
		rejectConn(conn, "internal error")
		return
	}
	if !found {
		rejectConn(conn, "unauthorized")
		return
	}

	log.Printf("WebSocket connected: userId=%s, username=%s", user.ID, user.Username)
	h.hub.Attach(hub.NewClient(h.hub, conn, user))
}

func rejectConn(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(closeUnauthorized, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}
