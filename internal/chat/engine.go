// Package chat implements the conversation engine: it owns the per-turn
// flow of persisting messages, grounding retrieval-mode turns in document
// chunks, calling the model, and keeping conversation token totals current.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/botgpt/botgpt/internal/llm"
	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/store"
)

// ErrInvalidMode is returned when a conversation is started with an unknown
// mode.
var ErrInvalidMode = errors.New("invalid conversation mode")

// titleMaxRunes bounds conversation titles derived from the first message.
const titleMaxRunes = 50

// Store is the persistence surface the engine needs. *store.Store satisfies
// it.
type Store interface {
	GetUser(ctx context.Context, userID string) (*store.User, error)
	CreateConversation(ctx context.Context, userID, mode, title string) (*store.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*store.Conversation, error)
	AddMessage(ctx context.Context, conversationID, role, content string, tokens int) (*store.Message, error)
	AddConversationTokens(ctx context.Context, conversationID string, n int) error
	DocumentIDsForConversation(ctx context.Context, conversationID string) ([]string, error)
}

// Retriever finds the chunks most relevant to a query among the given
// documents. *rag.Retriever satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, documentIDs []string) ([]string, error)
}

// Generator produces a model reply for a message sequence. *llm.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message) (*llm.Reply, error)
}

// Result is the outcome of a completed turn.
type Result struct {
	Conversation *store.Conversation
	Response     string
	Tokens       int
}

// Config configures an Engine.
type Config struct {
	Store     Store
	Retriever Retriever
	Generator Generator
	Logger    log.Logger
}

func (c Config) validate() error {
	if c.Store == nil {
		return errors.New("chat: store is required")
	}
	if c.Retriever == nil {
		return errors.New("chat: retriever is required")
	}
	if c.Generator == nil {
		return errors.New("chat: generator is required")
	}
	return nil
}

// Engine drives conversation turns.
type Engine struct {
	store     Store
	retriever Retriever
	generator Generator
	logger    *slog.Logger
}

// New creates an Engine from cfg.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     cfg.Store,
		retriever: cfg.Retriever,
		generator: cfg.Generator,
		logger:    logger,
	}, nil
}

// StartConversation creates a conversation titled after the first message,
// records that message, and completes the opening turn. An omitted mode
// means an open conversation; unknown modes are rejected. The first turn is
// never grounded: no documents can be attached before the conversation
// exists.
func (e *Engine) StartConversation(ctx context.Context, userID, mode, firstMessage string) (*Result, error) {
	if mode == "" {
		mode = store.ModeOpen
	}
	if !store.ValidMode(mode) {
		return nil, fmt.Errorf("mode %q: %w", mode, ErrInvalidMode)
	}
	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	conv, err := e.store.CreateConversation(ctx, userID, mode, makeTitle(firstMessage))
	if err != nil {
		return nil, err
	}
	if _, err := e.store.AddMessage(ctx, conv.ID, store.RoleUser, firstMessage, 0); err != nil {
		return nil, err
	}

	reply, err := e.generator.Generate(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: firstMessage},
	})
	if err != nil {
		return nil, err
	}
	if err := e.recordReply(ctx, conv.ID, reply); err != nil {
		return nil, err
	}

	conv.TotalTokens += reply.Tokens
	return &Result{Conversation: conv, Response: reply.Text, Tokens: reply.Tokens}, nil
}

// SendMessage completes one turn of an existing conversation. The user
// message is persisted before the model is called, so it survives a model
// failure. In retrieval mode the turn is grounded in the top chunks of the
// attached documents; with nothing attached or nothing retrieved the turn
// degrades to an ungrounded one.
func (e *Engine) SendMessage(ctx context.Context, conversationID, content string) (*Result, error) {
	conv, err := e.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.AddMessage(ctx, conv.ID, store.RoleUser, content, 0); err != nil {
		return nil, err
	}

	var messages []llm.Message
	if conv.Mode == store.ModeRAG {
		docIDs, err := e.store.DocumentIDsForConversation(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		chunks, err := e.retriever.Retrieve(ctx, content, docIDs)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			messages = append(messages, llm.Message{
				Role:    llm.RoleSystem,
				Content: contextPrompt(chunks),
			})
		} else {
			e.logger.Debug("no chunks retrieved, answering ungrounded",
				"conversation_id", conv.ID, "documents", len(docIDs))
		}
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})

	reply, err := e.generator.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	if err := e.recordReply(ctx, conv.ID, reply); err != nil {
		return nil, err
	}

	conv.TotalTokens += reply.Tokens
	return &Result{Conversation: conv, Response: reply.Text, Tokens: reply.Tokens}, nil
}

func (e *Engine) recordReply(ctx context.Context, conversationID string, reply *llm.Reply) error {
	if _, err := e.store.AddMessage(ctx, conversationID, store.RoleAssistant, reply.Text, reply.Tokens); err != nil {
		return err
	}
	return e.store.AddConversationTokens(ctx, conversationID, reply.Tokens)
}

// contextPrompt formats retrieved chunks as the grounding system message.
func contextPrompt(chunks []string) string {
	var b strings.Builder
	b.WriteString("Answer based on this context:\n\n")
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "CHUNK %d:\n%s", i+1, chunk)
	}
	return b.String()
}

// makeTitle derives a conversation title from its first message.
func makeTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= titleMaxRunes {
		return firstMessage
	}
	return string(runes[:titleMaxRunes]) + "..."
}
