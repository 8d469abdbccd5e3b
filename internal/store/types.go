package store

import "time"

// User represents an account that owns conversations and documents.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation mode constants. Mode is fixed at creation and decides whether
// retrieval runs on every subsequent turn.
const (
	// ModeOpen is a plain conversation with no document grounding.
	ModeOpen = "open"

	// ModeRAG grounds each turn in chunks retrieved from attached documents.
	ModeRAG = "rag"
)

// ValidMode reports whether mode is a known conversation mode.
func ValidMode(mode string) bool {
	return mode == ModeOpen || mode == ModeRAG
}

// Conversation represents a chat thread owned by a user.
type Conversation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Mode        string    `json:"mode"`
	Title       string    `json:"title"`
	TotalTokens int       `json:"total_tokens"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Message role constants.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn entry. Immutable once created;
// Tokens is non-zero only for assistant messages.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Tokens         int       `json:"tokens"`
	CreatedAt      time.Time `json:"created_at"`
}

// Document represents an uploaded document owned by a user.
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentInfo is a Document together with its chunk count, as returned by
// listing queries.
type DocumentInfo struct {
	Document
	ChunkCount int `json:"chunks"`
}

// Chunk is a bounded word-span of a document together with its embedding
// vector. Created once during upload processing and never mutated.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Seq        int       `json:"seq"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}
