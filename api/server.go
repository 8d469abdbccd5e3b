// Package api provides the HTTP REST API.
//
// Endpoints:
//
//	GET  /health                             liveness probe
//	GET  /ready                              readiness probe (DB ping)
//	POST /api/users                          create user
//	GET  /api/users                          list users
//	POST /api/conversations                  start conversation (first turn)
//	GET  /api/conversations?user_id=         list a user's conversations
//	GET  /api/conversations/{id}             conversation detail with messages
//	DELETE /api/conversations/{id}           delete conversation
//	POST /api/conversations/{id}/messages    send one message (one turn)
//	POST /api/conversations/{id}/documents   attach a document (idempotent)
//	POST /api/documents                      upload document (multipart)
//	GET  /api/documents?user_id=             list a user's documents
//	DELETE /api/documents/{id}               delete document
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints
//   - users.go, conversations.go, documents.go: resource handlers
//   - response.go: JSON response helpers and error mapping
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botgpt/botgpt/internal/chat"
	"github.com/botgpt/botgpt/internal/extract"
	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/rag"
	"github.com/botgpt/botgpt/internal/store"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8000"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to stop slow-client attacks.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Model calls happen inside the request, so this exceeds the model
	// timeout.
	WriteTimeout = 60 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the REST API.
type Server struct {
	mux *http.ServeMux

	health        *HealthHandler
	users         *UserHandler
	conversations *ConversationHandler
	documents     *DocumentHandler
}

// NewServer creates a server with all routes registered.
func NewServer(
	pool *pgxpool.Pool,
	st *store.Store,
	engine *chat.Engine,
	indexer *rag.Indexer,
	extractor *extract.Registry,
	logger log.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:           mux,
		health:        NewHealthHandler(pool, logger),
		users:         NewUserHandler(st, logger),
		conversations: NewConversationHandler(st, engine, logger),
		documents:     NewDocumentHandler(st, indexer, extractor, logger),
	}

	s.health.RegisterRoutes(mux)
	s.users.RegisterRoutes(mux)
	s.conversations.RegisterRoutes(mux)
	s.documents.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery, then logging, then handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
