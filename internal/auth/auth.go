// Package auth mints and verifies the bearer tokens that carry user
// identity. Tokens are HS256 JWTs with the user id as subject.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken means no credential was presented at all.
	ErrNoToken = errors.New("missing token")
	// ErrInvalidToken means the credential failed signature or expiry
	// checks.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the verified user identity carried by a token.
type Identity struct {
	UserID   string
	Username string
}

// Claims is the JWT claims structure used by this service.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Verifier signs and verifies bearer tokens.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

// NewVerifier creates a Verifier with the given HMAC secret and token
// lifetime.
func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for the given identity.
func (v *Verifier) Sign(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token and extracts the identity. An empty token
// yields ErrNoToken; anything failing validation yields ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.Subject, Username: claims.Username}, nil
}

// TokenFromRequest extracts the bearer credential from the
// Authorization header, falling back to the "token" query parameter.
// Both are valid carriers for websocket upgrades, where browsers cannot
// set headers.
func TokenFromRequest(r *http.Request) string {
	if authz := strings.TrimSpace(r.Header.Get("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
		return authz
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
