package rag

import (
	"context"
	"fmt"

	"github.com/botgpt/botgpt/internal/store"
)

// Indexer turns raw document text into embedded chunks ready for
// persistence.
type Indexer struct {
	embedder Embedder
	maxWords int
}

// NewIndexer creates an Indexer. maxWords values below 1 fall back to
// DefaultMaxWords.
func NewIndexer(embedder Embedder, maxWords int) *Indexer {
	if maxWords < 1 {
		maxWords = DefaultMaxWords
	}
	return &Indexer{embedder: embedder, maxWords: maxWords}
}

// Process chunks text and embeds each chunk in order. Chunks are embedded
// sequentially; a failure on any chunk aborts the whole document so a
// partially embedded document is never persisted.
func (idx *Indexer) Process(ctx context.Context, text string) ([]store.Chunk, error) {
	pieces := Chunk(text, idx.maxWords)
	if len(pieces) == 0 {
		return nil, nil
	}

	chunks := make([]store.Chunk, len(pieces))
	for i, piece := range pieces {
		vec, err := idx.embedder.Embed(ctx, piece)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d of %d: %w", i+1, len(pieces), err)
		}
		chunks[i] = store.Chunk{Seq: i, Content: piece, Embedding: vec}
	}
	return chunks, nil
}
