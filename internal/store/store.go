// Package store provides PostgreSQL persistence for all botgpt entities:
// users, conversations, messages, documents, document chunks, and
// conversation-document attachment links.
//
// Store is safe for concurrent use by multiple goroutines. Ownership rules
// (conversation -> messages, document -> chunks, either side -> attachment
// links) are enforced by explicit ON DELETE CASCADE foreign keys in
// db/migrations, so deletes here never orphan child rows.
package store

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced to callers. Wrapped with context at each call
// site; match with errors.Is().
var (
	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates a user with the given email already exists.
	ErrEmailTaken = errors.New("email already exists")
)

// Store manages entity persistence with a PostgreSQL backend.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	// newID produces opaque identifiers for new entities.
	// Overridable in tests for deterministic ids.
	newID func() string
}

// New creates a new Store instance.
//
// Parameters:
//   - pool: PostgreSQL connection pool
//   - logger: logger for debugging (nil = slog.Default())
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		pool:   pool,
		logger: logger,
		newID:  uuid.NewString,
	}
}
