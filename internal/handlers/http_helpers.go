package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Message string `json:"message"`
}

// respondJSON writes a JSON response. A nil payload produces an empty
// body.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Message: msg})
}

// decodeJSON decodes the request body into dst. On failure it writes an
// error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	// Keep request bodies bounded (1MB).
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			respondError(w, http.StatusBadRequest, "invalid JSON payload")
			return false
		}
		respondError(w, http.StatusBadRequest, "bad request")
		return false
	}
	return true
}

// normalizeID trims surrounding whitespace from an identifier.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}
