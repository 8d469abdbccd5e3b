package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/store"
)

const (
	// MaxUploadBytes bounds the whole multipart upload request.
	MaxUploadBytes = 16 << 20

	// multipartMemory is how much of the form http keeps in memory before
	// spilling to disk.
	multipartMemory = 4 << 20
)

// DocumentStore is the persistence surface the document handler needs.
// *store.Store satisfies it.
type DocumentStore interface {
	GetUser(ctx context.Context, userID string) (*store.User, error)
	CreateDocumentWithChunks(ctx context.Context, userID, filename string, chunks []store.Chunk) (*store.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]*store.DocumentInfo, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Indexer turns document text into embedded chunks. *rag.Indexer satisfies
// it.
type Indexer interface {
	Process(ctx context.Context, text string) ([]store.Chunk, error)
}

// TextExtractor pulls plain text out of an uploaded file.
// *extract.Registry satisfies it.
type TextExtractor interface {
	Extract(filename string, data []byte) (string, error)
}

// DocumentHandler handles document endpoints.
type DocumentHandler struct {
	store     DocumentStore
	indexer   Indexer
	extractor TextExtractor
	logger    log.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(store DocumentStore, indexer Indexer, extractor TextExtractor, logger log.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, indexer: indexer, extractor: extractor, logger: logger}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents", h.upload)
	mux.HandleFunc("GET /api/documents", h.list)
	mux.HandleFunc("DELETE /api/documents/{id}", h.delete)
}

// upload ingests a document: multipart fields "user_id" and "file". The
// file's text is extracted, chunked, embedded chunk by chunk, and persisted
// together with the document record. Nothing is persisted on any failure.
func (h *DocumentHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid request", "upload exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request", "malformed multipart body")
		return
	}

	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid request", "user_id field is required")
		return
	}
	if _, err := h.store.GetUser(r.Context(), userID); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", "file field is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	text, err := h.extractor.Extract(header.Filename, data)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	chunks, err := h.indexer.Process(r.Context(), text)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	doc, err := h.store.CreateDocumentWithChunks(r.Context(), userID, header.Filename, chunks)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"chunks":      len(chunks),
	})
}

// list returns a user's documents with chunk counts.
func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "invalid request", "user_id query parameter is required")
		return
	}

	docs, err := h.store.ListDocumentsByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []*store.DocumentInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// delete removes a document and, by cascade, its chunks and attachment
// links. Conversations that used it keep their messages.
func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteDocument(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
