package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/botgpt/botgpt/internal/chat"
	"github.com/botgpt/botgpt/internal/extract"
	"github.com/botgpt/botgpt/internal/llm"
	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/rag"
	"github.com/botgpt/botgpt/internal/store"
)

// writeJSON writes a JSON response with the given status code.
// Note: if encoding fails after WriteHeader is called the status code is
// already sent, so the error can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse represents a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

// writeDomainError maps sentinel errors from the lower layers to HTTP
// statuses: not-found to 404, validation to 400, upstream model or embedder
// failure to 502, everything else to an opaque 500.
func writeDomainError(w http.ResponseWriter, logger log.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, chat.ErrInvalidMode),
		errors.Is(err, extract.ErrUnsupportedType),
		errors.Is(err, extract.ErrNoText):
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, llm.ErrModel), errors.Is(err, rag.ErrEmbedder):
		logger.Error("upstream failure", "error", err)
		writeError(w, http.StatusBadGateway, "upstream failure", err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", "")
	}
}
