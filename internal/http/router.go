package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"webchat-api/internal/auth"
	"webchat-api/internal/handlers"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Room      *handlers.RoomHandler
	DM        *handlers.DMHandler
	Upload    *handlers.UploadHandler
	WebSocket *handlers.WebSocketHandler
}

func NewRouter(h Handlers, verifier *auth.Verifier, allowedOrigins []string, uploadDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.With(handlers.RequireAuth(verifier)).Get("/verify", h.Auth.Verify)
	})

	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", h.Room.List)
		r.Post("/", h.Room.Create)
		r.With(handlers.RequireAuth(verifier)).Get("/{roomId}/messages", h.Room.Messages)
	})

	r.Group(func(r chi.Router) {
		r.Use(handlers.RequireAuth(verifier))
		r.Get("/api/dms", h.DM.List)
		r.Get("/api/dms/{userId}", h.DM.Conversation)
		r.Post("/api/users/{userId}/block", h.DM.Block)
		r.Delete("/api/users/{userId}/block", h.DM.Unblock)
		r.Get("/api/blocked-users", h.DM.Blocked)
		r.Post("/api/upload/image", h.Upload.Image)
	})

	// Processed attachments are plain static files.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// The websocket endpoint does its own token handling so it can
	// reply with a close frame instead of an HTTP status.
	r.Get("/ws", h.WebSocket.Handle)

	return r
}
