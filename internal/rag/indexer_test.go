package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// countingEmbedder returns a distinct vector per call and can fail at a
// chosen call number.
type countingEmbedder struct {
	calls  int
	failAt int // 1-based call number to fail at, 0 = never
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	if c.failAt > 0 && c.calls == c.failAt {
		return nil, errors.New("embed failed")
	}
	return []float32{float32(c.calls)}, nil
}

func TestIndexerProcess(t *testing.T) {
	words := strings.Fields(strings.Repeat("word ", 12))
	text := strings.Join(words, " ")

	embedder := &countingEmbedder{}
	idx := NewIndexer(embedder, 5)

	chunks, err := idx.Process(context.Background(), text)
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if embedder.calls != 3 {
		t.Errorf("embedder called %d times, want 3", embedder.calls)
	}
	for i, c := range chunks {
		if c.Seq != i {
			t.Errorf("chunk %d has Seq %d", i, c.Seq)
		}
		if len(c.Embedding) == 0 {
			t.Errorf("chunk %d has no embedding", i)
		}
	}
	// Embedding order follows chunk order.
	if chunks[0].Embedding[0] != 1 || chunks[2].Embedding[0] != 3 {
		t.Error("embeddings not assigned in chunk order")
	}
}

func TestIndexerProcessBlankText(t *testing.T) {
	embedder := &countingEmbedder{}
	idx := NewIndexer(embedder, 5)

	chunks, err := idx.Process(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("got %v, want nil", chunks)
	}
	if embedder.calls != 0 {
		t.Error("embedder called for blank text")
	}
}

func TestIndexerProcessAbortsOnEmbedFailure(t *testing.T) {
	embedder := &countingEmbedder{failAt: 2}
	idx := NewIndexer(embedder, 1)

	chunks, err := idx.Process(context.Background(), "alpha beta gamma")
	if err == nil {
		t.Fatal("Process() expected error")
	}
	if chunks != nil {
		t.Errorf("got partial chunks %v, want none", chunks)
	}
	if embedder.calls != 2 {
		t.Errorf("embedder called %d times, want 2 (stop at failure)", embedder.calls)
	}
}
