// Package app provides application initialization and dependency wiring.
//
// App is the container that holds every long-lived component: the Genkit
// instance, the database pool, the store, the retrieval pipeline, the model
// client, and the conversation engine. Setup builds it in dependency order;
// Close releases everything.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/botgpt/botgpt/internal/chat"
	"github.com/botgpt/botgpt/internal/config"
	"github.com/botgpt/botgpt/internal/extract"
	"github.com/botgpt/botgpt/internal/llm"
	"github.com/botgpt/botgpt/internal/rag"
	"github.com/botgpt/botgpt/internal/store"
)

// App is the core application container.
type App struct {
	Config *config.Config

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Store     *store.Store
	Retriever *rag.Retriever
	Indexer   *rag.Indexer
	Extractor *extract.Registry
	LLM       *llm.Client
	Engine    *chat.Engine

	otelCleanup func()
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		slog.Info("database pool closed")
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
