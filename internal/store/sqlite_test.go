package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ingest-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteFeedbackRoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	saved, err := st.InsertFeedback(ctx, model.Feedback{
		Source:      "bill",
		Accepted:    true,
		Category:    model.FeedbackApply,
		Confidence:  0.83,
		Amount:      4950,
		Description: `{"applied":["amount"]}`,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	_, err = st.InsertFeedback(ctx, model.Feedback{
		Source:   "expense",
		Accepted: false,
		Category: model.FeedbackCorrection,
	})
	require.NoError(t, err)

	all, err := st.ListRecentFeedback(ctx, FeedbackFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bills, err := st.ListRecentFeedback(ctx, FeedbackFilter{Source: "bill"})
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, saved.ID, bills[0].ID)
	assert.True(t, bills[0].Accepted)
	assert.Equal(t, model.FeedbackApply, bills[0].Category)
	assert.InDelta(t, 0.83, bills[0].Confidence, 0.001)
	assert.InDelta(t, 4950.0, bills[0].Amount, 0.001)
	assert.Equal(t, `{"applied":["amount"]}`, bills[0].Description)
}

func TestSQLiteFeedbackLimit(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.InsertFeedback(ctx, model.Feedback{
			Source:   "bill",
			Category: model.FeedbackApply,
		})
		require.NoError(t, err)
	}

	out, err := st.ListRecentFeedback(ctx, FeedbackFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestSQLiteContactUpsert(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	first, err := st.UpsertContact(ctx, model.Contact{Name: "Acme Corp", Email: "old@acme.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// Same name updates in place instead of duplicating.
	_, err = st.UpsertContact(ctx, model.Contact{Name: "Acme Corp", Email: "new@acme.test", TaxNumber: "12-345"})
	require.NoError(t, err)

	_, err = st.UpsertContact(ctx, model.Contact{Name: "Globex LLC"})
	require.NoError(t, err)

	contacts, err := st.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Acme Corp", contacts[0].Name)
	assert.Equal(t, "new@acme.test", contacts[0].Email)
	assert.Equal(t, "12-345", contacts[0].TaxNumber)
	assert.Equal(t, "Globex LLC", contacts[1].Name)
}

func TestSQLitePreferences(t *testing.T) {
	t.Parallel()
	st := newTestSQLite(t)
	ctx := context.Background()

	got, err := st.GetPreference(ctx, "ai.applyDefaults.bills")
	require.NoError(t, err)
	assert.Nil(t, got, "missing key reads as nil, not error")

	require.NoError(t, st.PutPreference(ctx, "ai.applyDefaults.bills", []byte(`{"bill_date":false}`)))
	got, err = st.GetPreference(ctx, "ai.applyDefaults.bills")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bill_date":false}`, string(got))

	// Last write wins.
	require.NoError(t, st.PutPreference(ctx, "ai.applyDefaults.bills", []byte(`{"bill_date":true}`)))
	got, err = st.GetPreference(ctx, "ai.applyDefaults.bills")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bill_date":true}`, string(got))

	require.NoError(t, st.DeletePreference(ctx, "ai.applyDefaults.bills"))
	got, err = st.GetPreference(ctx, "ai.applyDefaults.bills")
	require.NoError(t, err)
	assert.Nil(t, got)
}
