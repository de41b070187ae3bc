package model

import "time"

// FeedbackCategory classifies a recorded feedback event.
type FeedbackCategory string

const (
	// FeedbackApply records which fields were auto-applied from an extraction.
	FeedbackApply FeedbackCategory = "extraction-apply"
	// FeedbackCorrection records a user overriding a previously applied value.
	FeedbackCorrection FeedbackCategory = "extraction-correction"
)

// Feedback is a lightweight extraction-quality signal. Recording is always
// fire-and-forget: failures never surface to the user or block the main flow.
type Feedback struct {
	ID          string           `json:"id,omitempty"`
	Source      string           `json:"source"` // consuming form, e.g. "bill", "expense"
	Accepted    bool             `json:"accepted"`
	Category    FeedbackCategory `json:"category"`
	Confidence  float64          `json:"confidence,omitempty"`
	Amount      float64          `json:"amount,omitempty"`
	Description string           `json:"description,omitempty"` // JSON-encoded detail blob
	CreatedAt   time.Time        `json:"created_at,omitempty"`
}

// FieldCorrection is one entry in a correction feedback detail blob.
type FieldCorrection struct {
	Field       string `json:"field"`
	ValueBefore string `json:"value_before"`
	ValueAfter  string `json:"value_after"`
}

// Contact is a known vendor/counterparty from the contact list. The matcher
// treats these as a pre-fetched in-memory list and performs no I/O.
type Contact struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	TaxNumber string `json:"tax_number,omitempty"`
}

// MatchCandidate pairs a contact with its similarity score against an
// extracted vendor name. Only surfaced when the score clears the matcher's
// acceptance threshold.
type MatchCandidate struct {
	Contact Contact `json:"contact"`
	Score   float64 `json:"score"`
}
