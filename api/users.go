package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/store"
)

// User validation constants.
const (
	MaxNameLength  = 200
	MaxEmailLength = 320
)

// UserStore is the persistence surface the user handler needs.
// *store.Store satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, name, email string) (*store.User, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
}

// UserHandler handles user endpoints.
type UserHandler struct {
	store  UserStore
	logger log.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(store UserStore, logger log.Logger) *UserHandler {
	return &UserHandler{store: store, logger: logger}
}

// RegisterRoutes registers user routes on the given mux.
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.create)
	mux.HandleFunc("GET /api/users", h.list)
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// create creates a new user. Duplicate emails are rejected with 400.
func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Name == "" || len(req.Name) > MaxNameLength:
		writeError(w, http.StatusBadRequest, "invalid request", "name is required")
		return
	case req.Email == "" || len(req.Email) > MaxEmailLength || !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "invalid request", "valid email is required")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// list returns all users.
func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if users == nil {
		users = []*store.User{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
