package extract

import (
	"bytes"
	"fmt"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// HTML extracts the readable article text from HTML documents, stripping
// markup, scripts, and boilerplate navigation.
type HTML struct{}

// Extensions returns the HTML family of extensions.
func (HTML) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract runs readability extraction over the document. The base URL only
// anchors relative links inside the page and never leaves the process.
func (HTML) Extract(data []byte) (string, error) {
	base := &url.URL{Scheme: "file", Path: "/upload"}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	return article.TextContent, nil
}
