// Package llm hosts the server-side extraction provider: it turns raw
// document text into a structured ExtractionResult via a language model.
package llm

import (
	"context"
	"time"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// Provider extracts structured fields from one document.
type Provider interface {
	Extract(ctx context.Context, text string, kind model.DocumentKind, locale string) (*model.ExtractionResult, error)
}

// Fake is a deterministic Provider for tests and offline development: it
// returns a fixed result with meta filled in.
type Fake struct {
	Result *model.ExtractionResult
	Err    error
}

func (f *Fake) Extract(ctx context.Context, text string, kind model.DocumentKind, locale string) (*model.ExtractionResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	res := *f.Result
	res.Meta = &model.ExtractionMeta{
		Mode:       "text",
		Provider:   "fake",
		Locale:     locale,
		DurationMS: time.Millisecond.Milliseconds(),
	}
	return &res, nil
}
