package handlers

import (
	"errors"
	"log"
	"net/http"

	"webchat-api/internal/upload"
)

// UploadHandler accepts image attachments for chat messages.
type UploadHandler struct {
	proc     *upload.Processor
	maxBytes int64
}

func NewUploadHandler(p *upload.Processor, maxBytes int64) *UploadHandler {
	return &UploadHandler{proc: p, maxBytes: maxBytes}
}

// Image accepts a multipart "image" field, normalizes it, and returns
// the URL to attach to a message.
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		respondError(w, http.StatusBadRequest, "image field required")
		return
	}
	defer file.Close()

	res, err := h.proc.SaveImage(file)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedFormat) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Upload error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, res)
}
