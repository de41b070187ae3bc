// Package ocr recovers a text layer from binary document payloads so the
// extraction provider only ever sees plain text.
package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Extractor extracts text content from a PDF payload.
type Extractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// PdfToText extracts text using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty,
// "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

var _ Extractor = (*PdfToText)(nil)

// ExtractText runs pdftotext -layout on the payload and returns stdout.
func (p *PdfToText) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "ocr: create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", eris.Wrap(err, "ocr: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "ocr: close temp file")
	}

	cmd := exec.CommandContext(ctx, p.binPath, "-layout", tmp.Name(), "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: %s failed: %s", filepath.Base(p.binPath), stderr.String())
	}
	return stdout.String(), nil
}
