package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/botgpt/botgpt/internal/chat"
	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/store"
)

// MaxMessageLength bounds user message bodies.
const MaxMessageLength = 32 * 1024

// ConversationStore is the persistence surface the conversation handler
// needs. *store.Store satisfies it.
type ConversationStore interface {
	GetConversation(ctx context.Context, conversationID string) (*store.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]*store.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]*store.Message, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	GetDocument(ctx context.Context, documentID string) (*store.Document, error)
	AttachDocument(ctx context.Context, conversationID, documentID string) error
}

// Engine completes conversation turns. *chat.Engine satisfies it.
type Engine interface {
	StartConversation(ctx context.Context, userID, mode, firstMessage string) (*chat.Result, error)
	SendMessage(ctx context.Context, conversationID, content string) (*chat.Result, error)
}

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	store  ConversationStore
	engine Engine
	logger log.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(store ConversationStore, engine Engine, logger log.Logger) *ConversationHandler {
	return &ConversationHandler{store: store, engine: engine, logger: logger}
}

// RegisterRoutes registers conversation routes on the given mux.
func (h *ConversationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/conversations", h.create)
	mux.HandleFunc("GET /api/conversations", h.list)
	mux.HandleFunc("GET /api/conversations/{id}", h.get)
	mux.HandleFunc("DELETE /api/conversations/{id}", h.delete)
	mux.HandleFunc("POST /api/conversations/{id}/messages", h.sendMessage)
	mux.HandleFunc("POST /api/conversations/{id}/documents", h.attachDocument)
}

// CreateConversationRequest is the request body for starting a conversation.
type CreateConversationRequest struct {
	UserID       string `json:"user_id"`
	Mode         string `json:"mode"`
	FirstMessage string `json:"first_message"`
}

// create starts a conversation and completes its first turn.
func (h *ConversationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "invalid request", "user_id is required")
		return
	}
	if strings.TrimSpace(req.FirstMessage) == "" || len(req.FirstMessage) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid request", "first_message is required")
		return
	}

	result, err := h.engine.StartConversation(r.Context(), req.UserID, req.Mode, req.FirstMessage)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"conversation_id":    result.Conversation.ID,
		"assistant_response": result.Response,
		"tokens":             result.Tokens,
	})
}

// SendMessageRequest is the request body for one conversation turn.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// sendMessage completes one turn of an existing conversation.
func (h *ConversationHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" || len(req.Content) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid request", "content is required")
		return
	}

	result, err := h.engine.SendMessage(r.Context(), r.PathValue("id"), req.Content)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assistant_response": result.Response,
		"tokens":             result.Tokens,
	})
}

// list returns a user's conversations, most recently updated first.
func (h *ConversationHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid request", "user_id query parameter is required")
		return
	}

	conversations, err := h.store.ListConversationsByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if conversations == nil {
		conversations = []*store.Conversation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

// get returns one conversation with its full message history.
func (h *ConversationHandler) get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.store.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	messages, err := h.store.ListMessages(r.Context(), conv.ID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if messages == nil {
		messages = []*store.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           conv.ID,
		"mode":         conv.Mode,
		"title":        conv.Title,
		"total_tokens": conv.TotalTokens,
		"messages":     messages,
	})
}

// delete removes a conversation and, by cascade, its messages and
// attachment links.
func (h *ConversationHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteConversation(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AttachDocumentRequest is the request body for attaching a document.
type AttachDocumentRequest struct {
	DocumentID string `json:"document_id"`
}

// attachDocument links a document to a conversation. Attaching twice is not
// an error; both calls report success.
func (h *ConversationHandler) attachDocument(w http.ResponseWriter, r *http.Request) {
	var req AttachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "malformed JSON body")
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "invalid request", "document_id is required")
		return
	}

	conv, err := h.store.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if _, err := h.store.GetDocument(r.Context(), req.DocumentID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := h.store.AttachDocument(r.Context(), conv.ID, req.DocumentID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}
