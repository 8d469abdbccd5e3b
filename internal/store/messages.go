package store

import (
	"context"
	"fmt"
)

// AddMessage appends a message to a conversation. Role is RoleUser or
// RoleAssistant; tokens is the model-reported count for assistant messages
// and zero for user messages.
func (s *Store) AddMessage(ctx context.Context, conversationID, role, content string, tokens int) (*Message, error) {
	m := Message{
		ID:             s.newID(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Tokens:         tokens,
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, tokens)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		m.ID, m.ConversationID, m.Role, m.Content, m.Tokens,
	).Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding message: %w", err)
	}

	s.logger.Debug("added message", "conversation_id", conversationID, "role", role)
	return &m, nil
}

// ListMessages returns all messages of a conversation in creation order.
func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, tokens, created_at
		 FROM messages WHERE conversation_id = $1 ORDER BY created_at, id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Tokens, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return messages, nil
}
