// Package rag implements the retrieval pipeline: word-bounded chunking of
// document text, embedding via a Genkit embedder, cosine scoring, and top-k
// retrieval over the chunks attached to a conversation.
//
// Retrieval is exhaustive: every candidate chunk is scored against the query
// embedding in memory. Collections are per conversation and small, so a
// linear scan beats maintaining an ANN index.
package rag
