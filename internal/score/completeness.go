// Package score computes display-only quality metrics for extraction results.
package score

import (
	"math"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// Score summarizes how much of a required field set an extraction populated.
type Score struct {
	Count   int `json:"count"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Completeness counts the required fields that are present and non-blank in
// the extraction. Callers always supply at least one required field. The
// result is display-only and the computation has no side effects.
func Completeness(ex *model.ExtractionResult, required []string) Score {
	s := Score{Total: len(required)}
	for _, f := range required {
		if ex.Has(f) {
			s.Count++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Round(float64(s.Count) / float64(s.Total) * 100))
	}
	return s
}
