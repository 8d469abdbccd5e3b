// Package extract turns uploaded files into plain text for chunking.
// Extractors are selected by filename extension; unsupported types and
// files with no usable text are rejected before anything is persisted.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedType is returned for file types no extractor handles.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNoText is returned when a file yields no usable text.
	ErrNoText = errors.New("document contains no text")
)

// Extractor pulls plain text out of one family of file formats.
type Extractor interface {
	// Extensions lists the lowercase filename extensions handled,
	// including the leading dot.
	Extensions() []string

	// Extract returns the text content of data.
	Extract(data []byte) (string, error)
}

// Registry routes files to extractors by extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry creates a registry with the given extractors. Later extractors
// win extension conflicts.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			r.byExt[strings.ToLower(ext)] = e
		}
	}
	return r
}

// DefaultRegistry returns a registry with the built-in extractors.
func DefaultRegistry() *Registry {
	return NewRegistry(Plaintext{}, HTML{}, NewPDF())
}

// Extract selects an extractor by the filename's extension and runs it.
func (r *Registry) Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%q: %w", ext, ErrUnsupportedType)
	}

	text, err := e.Extract(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Plaintext handles formats whose bytes already are the text.
type Plaintext struct{}

// Extensions returns the plain-text family of extensions.
func (Plaintext) Extensions() []string {
	return []string{".txt", ".md", ".markdown", ".text", ".log", ".csv"}
}

// Extract decodes data as UTF-8, dropping invalid sequences.
func (Plaintext) Extract(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
