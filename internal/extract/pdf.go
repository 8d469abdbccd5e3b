package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// pdfTool is the external text extraction tool (poppler-utils).
const pdfTool = "pdftotext"

// CommandRunner runs an external tool with the given stdin and returns its
// stdout.
type CommandRunner interface {
	Run(name string, stdin []byte, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(name string, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// PDF extracts document text by piping the file through pdftotext.
type PDF struct {
	runner CommandRunner
}

// NewPDF creates a PDF extractor backed by the pdftotext binary.
func NewPDF() *PDF {
	return &PDF{runner: execRunner{}}
}

// Extensions returns the PDF extension.
func (*PDF) Extensions() []string {
	return []string{".pdf"}
}

// Extract converts data to layout-preserving plain text. A missing
// pdftotext binary reports how to install it.
func (p *PDF) Extract(data []byte) (string, error) {
	out, err := p.runner.Run(pdfTool, data, "-layout", "-", "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("extracting pdf: %w (install poppler-utils: apt install poppler-utils / brew install poppler)", err)
		}
		return "", fmt.Errorf("extracting pdf: %w", err)
	}
	return strings.ToValidUTF8(string(out), ""), nil
}
