package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateConversation creates a new conversation for the given user.
// Mode must be one of ModeOpen or ModeRAG and is fixed for the lifetime of
// the conversation.
func (s *Store) CreateConversation(ctx context.Context, userID, mode, title string) (*Conversation, error) {
	c := Conversation{
		ID:     s.newID(),
		UserID: userID,
		Mode:   mode,
		Title:  title,
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (id, user_id, mode, title)
		 VALUES ($1, $2, $3, $4)
		 RETURNING total_tokens, created_at, updated_at`,
		c.ID, c.UserID, c.Mode, c.Title,
	).Scan(&c.TotalTokens, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	s.logger.Debug("created conversation", "id", c.ID, "mode", c.Mode)
	return &c, nil
}

// GetConversation retrieves a conversation by ID.
// Returns ErrNotFound if no such conversation exists.
func (s *Store) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var c Conversation
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, mode, title, total_tokens, created_at, updated_at
		 FROM conversations WHERE id = $1`,
		conversationID,
	).Scan(&c.ID, &c.UserID, &c.Mode, &c.Title, &c.TotalTokens, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %q: %w", conversationID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting conversation %q: %w", conversationID, err)
	}
	return &c, nil
}

// ListConversationsByUser lists a user's conversations ordered by last
// update, newest first.
func (s *Store) ListConversationsByUser(ctx context.Context, userID string) ([]*Conversation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, mode, title, total_tokens, created_at, updated_at
		 FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Mode, &c.Title, &c.TotalTokens, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		conversations = append(conversations, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return conversations, nil
}

// AddConversationTokens adds n to the conversation's cumulative token total
// and bumps updated_at.
func (s *Store) AddConversationTokens(ctx context.Context, conversationID string, n int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE conversations
		 SET total_tokens = total_tokens + $2, updated_at = now()
		 WHERE id = $1`,
		conversationID, n,
	)
	if err != nil {
		return fmt.Errorf("updating conversation tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %q: %w", conversationID, ErrNotFound)
	}
	return nil
}

// DeleteConversation deletes a conversation. Messages and attachment links
// are removed by FK cascade; attached documents are untouched.
// Returns ErrNotFound if no such conversation exists.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, conversationID)
	if err != nil {
		return fmt.Errorf("deleting conversation %q: %w", conversationID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %q: %w", conversationID, ErrNotFound)
	}

	s.logger.Debug("deleted conversation", "id", conversationID)
	return nil
}
