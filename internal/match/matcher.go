// Package match scores extracted counterpart names against known contacts.
package match

import (
	"strings"

	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/normalize"
)

// Threshold is the default minimum score at which a candidate is surfaced as
// a confident match. Below it the matcher reports no match rather than guess.
const Threshold = 0.6

// Matcher finds the best known contact for a free-text name. Implementations
// must be deterministic: identical inputs in identical order always produce
// the identical result.
type Matcher interface {
	Best(name string, candidates []model.Contact) *model.MatchCandidate
}

// TokenOverlap is the default matching strategy: both names pass through
// entity-name standardization, then the score is the count of shared tokens
// divided by the smaller of the two token counts. A zero Threshold means the
// package default. Intentionally simple and explainable; swap the Matcher
// implementation to change match quality.
type TokenOverlap struct {
	Threshold float64
}

var _ Matcher = TokenOverlap{}

// Best returns the highest-scoring candidate at or above the threshold, or
// nil when no candidate clears it. Ties break in favor of the first-seen
// candidate.
func (m TokenOverlap) Best(name string, candidates []model.Contact) *model.MatchCandidate {
	query := strings.TrimSpace(name)
	if query == "" || len(candidates) == 0 {
		return nil
	}

	var best *model.MatchCandidate
	for _, c := range candidates {
		score := Similarity(query, c.Name)
		if best == nil || score > best.Score {
			best = &model.MatchCandidate{Contact: c, Score: score}
		}
	}
	if best == nil || best.Score < m.threshold() {
		return nil
	}
	return best
}

func (m TokenOverlap) threshold() float64 {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return Threshold
}

// Similarity computes the token-overlap score between two names, bounded to
// [0,1]. Both names are standardized first (case, legal suffixes,
// punctuation), so "Tech Solutions Inc." and "Tech Solutions Incorporated"
// compare equal.
func Similarity(a, b string) float64 {
	ta := tokens(a)
	tb := tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	matches := 0
	for _, t := range tb {
		if set[t] {
			matches++
		}
	}

	minLen := len(ta)
	if len(tb) < minLen {
		minLen = len(tb)
	}
	score := float64(matches) / float64(minLen)
	if score > 1 {
		score = 1
	}
	return score
}

func tokens(s string) []string {
	return strings.Fields(strings.ToLower(normalize.EntityName(s)))
}
