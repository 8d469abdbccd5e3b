package rag

import "strings"

// DefaultMaxWords is the chunk size used for uploaded documents.
const DefaultMaxWords = 500

// Chunk splits text into spans of at most maxWords whitespace-delimited
// words. Words are never split across chunks; only the final chunk may be
// shorter. Whitespace-only text yields no chunks. maxWords values below 1
// fall back to DefaultMaxWords.
func Chunk(text string, maxWords int) []string {
	if maxWords < 1 {
		maxWords = DefaultMaxWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
