package handlers

import (
	"context"
	"net/http"

	"webchat-api/internal/auth"
)

type ctxKey int

const identityKey ctxKey = 0

// RequireAuth verifies the bearer token and stores the caller's
// identity in the request context. Requests without a valid token get
// 401 and never reach the wrapped handler.
func RequireAuth(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := v.Verify(auth.TokenFromRequest(r))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// identityFrom returns the authenticated identity placed by
// RequireAuth. The bool is false on routes that skipped the middleware.
func identityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}
