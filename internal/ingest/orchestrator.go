// Package ingest drives the document ingestion lifecycle: submit raw input,
// preview the extraction with per-field apply toggles, apply a confirmed
// subset into a target form, and record correction feedback.
package ingest

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ledgerline/ingest-cli/internal/extractor"
	"github.com/ledgerline/ingest-cli/internal/match"
	"github.com/ledgerline/ingest-cli/internal/model"
	"github.com/ledgerline/ingest-cli/internal/normalize"
	"github.com/ledgerline/ingest-cli/internal/score"
	"github.com/ledgerline/ingest-cli/internal/toggles"
)

// State is the orchestrator's position in the ingestion lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StatePreviewing State = "previewing"
)

// ErrSubmitInFlight rejects a second Submit while one is outstanding.
var ErrSubmitInFlight = eris.New("ingest: extraction already in progress")

// Backend is the REST collaborator surface the orchestrator needs.
type Backend interface {
	ExtractDocument(ctx context.Context, req extractor.ExtractRequest) (*model.ExtractionResult, error)
	SendFeedback(ctx context.Context, fb model.Feedback) error
}

// RawInput is one document submission.
type RawInput struct {
	Text        string
	FileDataURL string
	TypeHint    model.DocumentKind
	Locale      string
}

// Orchestrator coordinates one ingestion session for a single consuming
// form. It is driven from a single event loop; the mutex only guards the
// double-submit window and the fire-and-forget feedback goroutines.
type Orchestrator struct {
	backend  Backend
	mapping  *model.FieldMapping
	toggles  *toggles.Set
	matcher  match.Matcher
	contacts []model.Contact
	source   string // feedback source, e.g. "bill", "expense"

	mu         sync.Mutex
	state      State
	extraction *model.ExtractionResult
	bestMatch  *model.MatchCandidate
	lastError  string

	// apply bookkeeping for idempotent re-apply and late corrections
	baseForm      map[string]string
	appliedValues map[string]string

	feedbackWG sync.WaitGroup
}

// Options configures optional collaborators.
type Options struct {
	Matcher  match.Matcher
	Contacts []model.Contact
	Source   string
	Defaults toggles.DefaultsRepo
}

// New creates an orchestrator in the Idle state.
func New(backend Backend, mapping *model.FieldMapping, opts Options) *Orchestrator {
	if opts.Matcher == nil {
		opts.Matcher = match.TokenOverlap{}
	}
	if opts.Defaults == nil {
		opts.Defaults = toggles.NewMemory()
	}
	if opts.Source == "" {
		opts.Source = mapping.Profile
	}
	return &Orchestrator{
		backend:  backend,
		mapping:  mapping,
		toggles:  toggles.New(mapping, opts.Defaults),
		matcher:  opts.Matcher,
		contacts: opts.Contacts,
		source:   opts.Source,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError returns the user-readable message from the most recent failed
// submit, or "".
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastError
}

// Extraction returns the extraction under preview, or nil.
func (o *Orchestrator) Extraction() *model.ExtractionResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.extraction
}

// BestMatch returns the confident vendor match for the current extraction,
// or nil when none cleared the threshold.
func (o *Orchestrator) BestMatch() *model.MatchCandidate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bestMatch
}

// Toggles returns the current toggle state.
func (o *Orchestrator) Toggles() map[string]bool {
	return o.toggles.Snapshot()
}

// Completeness scores the current extraction against the mapping's source
// fields.
func (o *Orchestrator) Completeness() score.Score {
	return score.Completeness(o.Extraction(), o.mapping.RequiredFields())
}

// Submit sends raw input to the extraction backend. On success the toggles
// are reseeded, a vendor match is computed, and the session moves to
// Previewing. On failure the error carries a user-readable message and the
// session returns to Idle with no partial state.
func (o *Orchestrator) Submit(ctx context.Context, in RawInput) error {
	o.mu.Lock()
	if o.state == StateExtracting {
		o.mu.Unlock()
		return ErrSubmitInFlight
	}
	o.state = StateExtracting
	o.lastError = ""
	o.mu.Unlock()

	result, err := o.backend.ExtractDocument(ctx, extractor.ExtractRequest{
		Text:        in.Text,
		FileDataURL: in.FileDataURL,
		Type:        in.TypeHint,
		Locale:      in.Locale,
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = StateIdle
		o.extraction = nil
		o.bestMatch = nil
		o.lastError = "Failed to extract fields from the document."
		zap.L().Error("document extraction failed",
			zap.String("profile", o.mapping.Profile),
			zap.Error(err),
		)
		return eris.Wrap(err, "ingest: submit")
	}

	o.extraction = result
	o.toggles.SeedFromExtraction(result)
	o.bestMatch = nil
	if strings.TrimSpace(result.VendorName) != "" {
		o.bestMatch = o.matcher.Best(result.VendorName, o.contacts)
	}
	o.baseForm = nil
	o.appliedValues = nil
	o.state = StatePreviewing
	return nil
}

// ToggleField flips one apply toggle during preview.
func (o *Orchestrator) ToggleField(key string, value bool) {
	if o.State() != StatePreviewing {
		return
	}
	o.toggles.SetToggle(key, value)
}

// ToggleAll sets every toggle (still bounded by field presence).
func (o *Orchestrator) ToggleAll(value bool) {
	if o.State() != StatePreviewing {
		return
	}
	o.toggles.SetAll(value)
}

// ResetToggles clears the persisted defaults and reseeds from presence.
func (o *Orchestrator) ResetToggles() {
	if o.State() != StatePreviewing {
		return
	}
	o.toggles.ResetToDefaults()
}

// Apply writes every toggled-on field into the form per the mapping,
// skipping values whose normalization fails. Repeated Apply calls for the
// same extraction rebuild the form from its pre-apply snapshot, so re-apply
// never duplicates appended notes. A best-effort "extraction-apply"
// feedback event is recorded without blocking; the session then returns to
// Idle and the extraction is discarded.
func (o *Orchestrator) Apply(ctx context.Context, form *Form) ([]string, error) {
	o.mu.Lock()
	if o.state != StatePreviewing {
		o.mu.Unlock()
		return nil, eris.New("ingest: nothing to apply")
	}
	ex := o.extraction
	if o.baseForm == nil {
		o.baseForm = form.Snapshot()
	} else {
		form.Restore(o.baseForm)
	}
	o.mu.Unlock()

	var applied []string
	for _, rule := range o.mapping.Rules {
		if !o.toggles.Get(rule.Key) {
			continue
		}
		value, ok := rule.Normalize(ex.Field(rule.Source))
		if !ok {
			// Unparseable values degrade gracefully: skip, never write "".
			continue
		}
		if rule.Append {
			prev := form.Get(rule.Target)
			entry := rule.Prefix + value
			if prev != "" {
				entry = prev + "\n" + entry
			}
			form.Set(rule.Target, strings.TrimSpace(entry))
		} else {
			form.Set(rule.Target, value)
		}
		applied = append(applied, rule.Key)
	}

	completeness := score.Completeness(ex, o.mapping.RequiredFields())
	amount, _ := normalize.Amount(ex.Total)

	o.mu.Lock()
	o.appliedValues = make(map[string]string, len(applied))
	for _, key := range applied {
		rule := o.mapping.ByKey(key)
		o.appliedValues[rule.Target] = form.Get(rule.Target)
	}
	meta := ex.Meta
	o.state = StateIdle
	o.extraction = nil
	o.bestMatch = nil
	o.mu.Unlock()

	detail, _ := json.Marshal(map[string]any{
		"applied": applied,
		"meta":    meta,
	})
	o.recordFeedback(ctx, model.Feedback{
		Source:      o.source,
		Accepted:    true,
		Category:    model.FeedbackApply,
		Confidence:  float64(completeness.Percent) / 100,
		Amount:      amount,
		Description: string(detail),
	})

	return applied, nil
}

// Cancel discards the extraction and un-applied toggle state. Feedback
// calls already in flight are left to finish in the background.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = StateIdle
	o.extraction = nil
	o.bestMatch = nil
	o.baseForm = nil
	o.appliedValues = nil
}

// RecordLateCorrection compares the form as it stood right after Apply with
// its values at final submit time and emits one correction feedback per
// changed applied field. Fire-and-forget: errors are swallowed.
func (o *Orchestrator) RecordLateCorrection(ctx context.Context, current map[string]string) {
	o.mu.Lock()
	appliedValues := o.appliedValues
	o.mu.Unlock()
	if len(appliedValues) == 0 {
		return
	}

	for target, before := range appliedValues {
		after, ok := current[target]
		if !ok || after == before {
			continue
		}
		detail, _ := json.Marshal(model.FieldCorrection{
			Field:       target,
			ValueBefore: before,
			ValueAfter:  after,
		})
		o.recordFeedback(ctx, model.Feedback{
			Source:      o.source,
			Accepted:    false,
			Category:    model.FeedbackCorrection,
			Description: string(detail),
		})
	}
}

// Wait blocks until outstanding feedback calls finish. CLI teardown and
// tests use it; the main flow never does.
func (o *Orchestrator) Wait() {
	o.feedbackWG.Wait()
}

// recordFeedback fires the feedback call in the background. It survives
// cancellation of the submitting context and never surfaces failures.
func (o *Orchestrator) recordFeedback(ctx context.Context, fb model.Feedback) {
	bgCtx := context.WithoutCancel(ctx)
	o.feedbackWG.Add(1)
	go func() {
		defer o.feedbackWG.Done()
		if err := o.backend.SendFeedback(bgCtx, fb); err != nil {
			zap.L().Debug("feedback recording failed",
				zap.String("category", string(fb.Category)),
				zap.Error(err),
			)
		}
	}()
}
