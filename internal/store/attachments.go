package store

import (
	"context"
	"fmt"
)

// AttachDocument links a document to a conversation so its chunks become
// retrievable on that conversation's turns. Attaching an already attached
// document is a no-op.
func (s *Store) AttachDocument(ctx context.Context, conversationID, documentID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_documents (id, conversation_id, document_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (conversation_id, document_id) DO NOTHING`,
		s.newID(), conversationID, documentID,
	)
	if err != nil {
		return fmt.Errorf("attaching document %q to conversation %q: %w", documentID, conversationID, err)
	}

	s.logger.Debug("attached document", "conversation_id", conversationID, "document_id", documentID)
	return nil
}

// DocumentIDsForConversation returns the IDs of all documents attached to a
// conversation, in attachment order.
func (s *Store) DocumentIDsForConversation(ctx context.Context, conversationID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT document_id FROM conversation_documents
		 WHERE conversation_id = $1 ORDER BY created_at, id`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing attached documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing attached documents: %w", err)
	}
	return ids, nil
}
