package ocr

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPdfToText_BinPath(t *testing.T) {
	p := NewPdfToText("")
	assert.Equal(t, "pdftotext", p.binPath)

	p = NewPdfToText("/custom/pdftotext")
	assert.Equal(t, "/custom/pdftotext", p.binPath)
}

func TestPdfToText_ExtractText(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}

	// Stand-in binary that echoes its input file back to stdout, the same
	// contract pdftotext honors with "-" as the output argument.
	bin := filepath.Join(t.TempDir(), "fake-pdftotext")
	script := "#!/bin/sh\ncat \"$2\"\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	p := NewPdfToText(bin)
	out, err := p.ExtractText(context.Background(), []byte("Invoice INV-001 total 4950.00"))
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-001 total 4950.00", out)
}

func TestPdfToText_ExtractTextMissingBinary(t *testing.T) {
	p := NewPdfToText(filepath.Join(t.TempDir(), "no-such-binary"))
	_, err := p.ExtractText(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
}

func TestParseDataURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantMime string
		wantData string
		wantErr  bool
	}{
		{"base64 pdf", "data:application/pdf;base64,JVBERi0=", "application/pdf", "%PDF-", false},
		{"base64 text", "data:text/plain;base64,aGVsbG8=", "text/plain", "hello", false},
		{"plain text", "data:text/plain,hello world", "text/plain", "hello world", false},
		{"charset parameter dropped", "data:text/plain;charset=utf-8;base64,aGVsbG8=", "text/plain", "hello", false},
		{"empty media type defaults", "data:,hello", "text/plain", "hello", false},
		{"missing prefix", "application/pdf;base64,JVBERi0=", "", "", true},
		{"missing payload", "data:application/pdf;base64", "", "", true},
		{"bad base64", "data:application/pdf;base64,!!!", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mime, data, err := ParseDataURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, mime)
			assert.Equal(t, tt.wantData, string(data))
		})
	}
}
