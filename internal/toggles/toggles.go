// Package toggles tracks per-field "apply this value" state for one
// ingestion session, seeded from extraction presence and persisted user
// defaults.
package toggles

import (
	"go.uber.org/zap"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// Set holds the apply toggles for one preview, scoped to an apply profile
// (one per consuming form, e.g. "bills", "expenses").
//
// Invariant, enforced at every mutation: a toggle is never true when its
// source field is absent or blank in the current extraction.
type Set struct {
	mapping *model.FieldMapping
	repo    DefaultsRepo
	ex      *model.ExtractionResult
	state   map[string]bool
}

// New creates an empty toggle set for the mapping's profile. repo may be a
// Memory repo when no durable preference store is available.
func New(mapping *model.FieldMapping, repo DefaultsRepo) *Set {
	return &Set{
		mapping: mapping,
		repo:    repo,
		state:   make(map[string]bool, len(mapping.Rules)),
	}
}

// SeedFromExtraction recomputes every toggle for a freshly received
// extraction: stored-preference-or-true AND field present. It must run for
// each new extraction so stale toggles never leak between documents.
func (s *Set) SeedFromExtraction(ex *model.ExtractionResult) {
	s.ex = ex
	prefs, err := s.repo.Get(s.mapping.Profile)
	if err != nil {
		// Preference loading is best-effort; presence alone drives defaults.
		zap.L().Warn("toggle defaults unavailable",
			zap.String("profile", s.mapping.Profile),
			zap.Error(err),
		)
		prefs = nil
	}
	s.state = make(map[string]bool, len(s.mapping.Rules))
	for _, rule := range s.mapping.Rules {
		pref := true
		if v, ok := prefs[rule.Key]; ok {
			pref = v
		}
		s.state[rule.Key] = pref && ex.Has(rule.Source)
	}
}

// SetToggle sets one toggle and persists it as the profile default for that
// key. Persistence failures are swallowed: the in-memory state stays
// authoritative for the session.
func (s *Set) SetToggle(key string, value bool) {
	rule := s.mapping.ByKey(key)
	if rule == nil {
		return
	}
	s.state[key] = value && s.ex.Has(rule.Source)

	prefs, err := s.repo.Get(s.mapping.Profile)
	if err != nil || prefs == nil {
		prefs = map[string]bool{}
	}
	prefs[key] = value
	if err := s.repo.Put(s.mapping.Profile, prefs); err != nil {
		zap.L().Warn("persist toggle default failed",
			zap.String("profile", s.mapping.Profile),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// SetAll sets every toggle to value AND field presence, and persists the
// result as the new profile defaults. Turning everything on never enables a
// toggle for a field with no extracted value.
func (s *Set) SetAll(value bool) {
	next := make(map[string]bool, len(s.mapping.Rules))
	for _, rule := range s.mapping.Rules {
		next[rule.Key] = value && s.ex.Has(rule.Source)
	}
	s.state = next
	if err := s.repo.Put(s.mapping.Profile, next); err != nil {
		zap.L().Warn("persist toggle defaults failed",
			zap.String("profile", s.mapping.Profile),
			zap.Error(err),
		)
	}
}

// ResetToDefaults clears the persisted profile and recomputes every toggle
// purely from the current extraction's field presence.
func (s *Set) ResetToDefaults() {
	if err := s.repo.Delete(s.mapping.Profile); err != nil {
		zap.L().Warn("clear toggle defaults failed",
			zap.String("profile", s.mapping.Profile),
			zap.Error(err),
		)
	}
	for _, rule := range s.mapping.Rules {
		s.state[rule.Key] = s.ex.Has(rule.Source)
	}
}

// Get reports the toggle for key.
func (s *Set) Get(key string) bool {
	return s.state[key]
}

// Snapshot returns a copy of the current toggle state.
func (s *Set) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.state))
	for k, v := range s.state {
		out[k] = v
	}
	return out
}
