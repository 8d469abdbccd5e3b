package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/botgpt/botgpt/internal/store"
)

// DefaultTopK is how many chunks a retrieval returns at most.
const DefaultTopK = 3

// ChunkSource loads candidate chunks for scoring. *store.Store satisfies it.
type ChunkSource interface {
	ChunksByDocumentIDs(ctx context.Context, documentIDs []string) ([]store.Chunk, error)
}

// Retriever scores every chunk of the given documents against a query
// embedding and returns the best matches.
type Retriever struct {
	source   ChunkSource
	embedder Embedder
	topK     int
}

// NewRetriever creates a Retriever. topK values below 1 fall back to
// DefaultTopK.
func NewRetriever(source ChunkSource, embedder Embedder, topK int) *Retriever {
	if topK < 1 {
		topK = DefaultTopK
	}
	return &Retriever{source: source, embedder: embedder, topK: topK}
}

// Retrieve returns the texts of the top-k chunks from the given documents
// most similar to query, best first. Ties keep the chunks' stable
// (document, chunk number) order. With no documents or no chunks it returns
// nil without calling the embedder.
func (r *Retriever) Retrieve(ctx context.Context, query string, documentIDs []string) ([]string, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	chunks, err := r.source.ChunksByDocumentIDs(ctx, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("loading candidate chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	type scored struct {
		text  string
		score float64
	}
	candidates := make([]scored, len(chunks))
	for i, chunk := range chunks {
		score, err := Cosine(queryVec, chunk.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring chunk %s: %w", chunk.ID, err)
		}
		candidates[i] = scored{text: chunk.Content, score: score}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	k := min(r.topK, len(candidates))
	texts := make([]string, k)
	for i := range k {
		texts[i] = candidates[i].text
	}
	return texts, nil
}
