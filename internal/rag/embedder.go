package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

const (
	// VectorDimension is the embedding width stored in document_chunks.
	// The migration's vector(768) column must match.
	VectorDimension = 768

	// MaxEmbedChars is the longest text passed to the embedding model.
	// Longer inputs are truncated, not rejected; an oversized chunk loses
	// its tail rather than failing the upload.
	MaxEmbedChars = 8000
)

// ErrEmbedder marks failures of the upstream embedding model so callers can
// distinguish them from local errors.
var ErrEmbedder = errors.New("embedding request failed")

// ErrEmptyEmbedding is returned when the model responds without a vector.
var ErrEmptyEmbedding = errors.New("embedder returned no embedding")

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenkitEmbedder adapts a Genkit ai.Embedder to the Embedder interface,
// truncating oversized inputs and verifying the response dimension.
type GenkitEmbedder struct {
	embedder ai.Embedder
}

// NewGenkitEmbedder wraps a Genkit embedder.
func NewGenkitEmbedder(embedder ai.Embedder) *GenkitEmbedder {
	return &GenkitEmbedder{embedder: embedder}
}

// Embed embeds a single text. Inputs longer than MaxEmbedChars are truncated
// at a rune boundary before the model call.
func (e *GenkitEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if runes := []rune(text); len(runes) > MaxEmbedChars {
		text = string(runes[:MaxEmbedChars])
	}

	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedder, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrEmbedder, ErrEmptyEmbedding)
	}

	vec := resp.Embeddings[0].Embedding
	if len(vec) != VectorDimension {
		return nil, fmt.Errorf("embedder returned %d dimensions, want %d: %w",
			len(vec), VectorDimension, ErrDimensionMismatch)
	}
	return vec, nil
}
