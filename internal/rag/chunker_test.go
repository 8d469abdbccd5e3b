package rag

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     []string
	}{
		{
			name:     "empty input",
			text:     "",
			maxWords: 5,
			want:     nil,
		},
		{
			name:     "whitespace only",
			text:     "  \t\n  ",
			maxWords: 5,
			want:     nil,
		},
		{
			name:     "fewer words than limit",
			text:     "one two three",
			maxWords: 5,
			want:     []string{"one two three"},
		},
		{
			name:     "exact multiple",
			text:     "a b c d",
			maxWords: 2,
			want:     []string{"a b", "c d"},
		},
		{
			name:     "partial final chunk",
			text:     "a b c d e",
			maxWords: 2,
			want:     []string{"a b", "c d", "e"},
		},
		{
			name:     "collapses whitespace runs",
			text:     "a\n\nb\t c",
			maxWords: 2,
			want:     []string{"a b", "c"},
		},
		{
			name:     "invalid limit falls back to default",
			text:     "a b c",
			maxWords: 0,
			want:     []string{"a b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Chunk(tt.text, tt.maxWords)
			if len(got) != len(tt.want) {
				t.Fatalf("Chunk() returned %d chunks, want %d: %q", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkPreservesAllWords(t *testing.T) {
	words := make([]string, 1234)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	chunks := Chunk(text, DefaultMaxWords)

	wantChunks := (len(words) + DefaultMaxWords - 1) / DefaultMaxWords
	if len(chunks) != wantChunks {
		t.Fatalf("got %d chunks, want %d", len(chunks), wantChunks)
	}

	var rejoined []string
	for i, c := range chunks {
		n := len(strings.Fields(c))
		if i < len(chunks)-1 && n != DefaultMaxWords {
			t.Errorf("chunk %d has %d words, want %d", i, n, DefaultMaxWords)
		}
		rejoined = append(rejoined, strings.Fields(c)...)
	}
	if strings.Join(rejoined, " ") != text {
		t.Error("chunks do not reconstruct the original word sequence")
	}
}
