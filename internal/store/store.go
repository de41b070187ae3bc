package store

import (
	"context"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// FeedbackFilter specifies criteria for listing recent feedback.
type FeedbackFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Store is the persistence interface behind the ingestion service: recorded
// feedback, the known-contact list, and toggle preference profiles.
type Store interface {
	// Feedback
	InsertFeedback(ctx context.Context, fb model.Feedback) (*model.Feedback, error)
	ListRecentFeedback(ctx context.Context, filter FeedbackFilter) ([]model.Feedback, error)

	// Contacts
	UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)

	// Preferences (one JSON blob per key, last write wins)
	GetPreference(ctx context.Context, key string) ([]byte, error)
	PutPreference(ctx context.Context, key string, value []byte) error
	DeletePreference(ctx context.Context, key string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
