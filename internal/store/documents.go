package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// CreateDocumentWithChunks persists a document together with its chunks in a
// single transaction. Chunks are numbered by slice position; either the
// whole document lands or nothing does.
func (s *Store) CreateDocumentWithChunks(ctx context.Context, userID, filename string, chunks []Chunk) (*Document, error) {
	doc := Document{
		ID:       s.newID(),
		UserID:   userID,
		Filename: filename,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Debug("transaction rollback", "error", err)
		}
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO documents (id, user_id, filename) VALUES ($1, $2, $3) RETURNING created_at`,
		doc.ID, doc.UserID, doc.Filename,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	for i, chunk := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks (id, document_id, seq, content, embedding)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.newID(), doc.ID, i, chunk.Content, pgvector.NewVector(chunk.Embedding),
		)
		if err != nil {
			return nil, fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing document: %w", err)
	}

	s.logger.Debug("created document", "id", doc.ID, "filename", filename, "chunks", len(chunks))
	return &doc, nil
}

// GetDocument retrieves a document by ID.
// Returns ErrNotFound if no such document exists.
func (s *Store) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var d Document
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, filename, created_at FROM documents WHERE id = $1`,
		documentID,
	).Scan(&d.ID, &d.UserID, &d.Filename, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("document %q: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("getting document %q: %w", documentID, err)
	}
	return &d, nil
}

// ListDocumentsByUser lists a user's documents with chunk counts, newest
// first.
func (s *Store) ListDocumentsByUser(ctx context.Context, userID string) ([]*DocumentInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT d.id, d.user_id, d.filename, d.created_at, count(c.id)
		 FROM documents d
		 LEFT JOIN document_chunks c ON c.document_id = d.id
		 WHERE d.user_id = $1
		 GROUP BY d.id
		 ORDER BY d.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*DocumentInfo
	for rows.Next() {
		var d DocumentInfo
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.CreatedAt, &d.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument deletes a document. Chunks and attachment links are removed
// by FK cascade; conversations that referenced the document survive with
// their messages intact.
// Returns ErrNotFound if no such document exists.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("deleting document %q: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %q: %w", documentID, ErrNotFound)
	}

	s.logger.Debug("deleted document", "id", documentID)
	return nil
}

// ChunksByDocumentIDs loads all chunks belonging to any of the given
// documents, in stable (document, chunk number) order. The order is what
// makes retrieval tie-breaking deterministic.
func (s *Store) ChunksByDocumentIDs(ctx context.Context, documentIDs []string) ([]Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, seq, content, embedding
		 FROM document_chunks
		 WHERE document_id = ANY($1)
		 ORDER BY document_id, seq`,
		documentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			c   Chunk
			vec pgvector.Vector
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Seq, &c.Content, &vec); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = vec.Slice()
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	return chunks, nil
}
