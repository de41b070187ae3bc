package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ingest-cli/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresMigrate(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ai_feedback").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertFeedback(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO ai_feedback").
		WithArgs(pgxmock.AnyArg(), "bill", true, "extraction-apply",
			0.83, 4950.0, `{"applied":["amount"]}`, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := st.InsertFeedback(context.Background(), model.Feedback{
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
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRecentFeedback(t *testing.T) {
	st, mock := newMockPostgres(t)

	confidence := 0.83
	amount := 4950.0
	description := "detail"
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, source, accepted, category").
		WithArgs("bill", 100).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "source", "accepted", "category", "confidence", "amount", "description", "created_at",
		}).AddRow("fb-1", "bill", true, "extraction-apply", &confidence, &amount, &description, now))

	out, err := st.ListRecentFeedback(context.Background(), FeedbackFilter{Source: "bill"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "fb-1", out[0].ID)
	assert.Equal(t, model.FeedbackApply, out[0].Category)
	assert.InDelta(t, 0.83, out[0].Confidence, 0.001)
	assert.InDelta(t, 4950.0, out[0].Amount, 0.001)
	assert.Equal(t, "detail", out[0].Description)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertContact(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("c1", "Acme Corp", "ap@acme.test", "12-345").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	saved, err := st.UpsertContact(context.Background(), model.Contact{
		ID: "c1", Name: "Acme Corp", Email: "ap@acme.test", TaxNumber: "12-345",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListContacts(t *testing.T) {
	st, mock := newMockPostgres(t)

	email := "ap@acme.test"
	mock.ExpectQuery("SELECT id, name, email, tax_number FROM contacts").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "tax_number"}).
			AddRow("c1", "Acme Corp", &email, (*string)(nil)).
			AddRow("c2", "Globex LLC", (*string)(nil), (*string)(nil)))

	out, err := st.ListContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "ap@acme.test", out[0].Email)
	assert.Equal(t, "", out[1].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetPreferenceMissing(t *testing.T) {
	st, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT value FROM preferences").
		WithArgs("ai.applyDefaults.bills").
		WillReturnRows(pgxmock.NewRows([]string{"value"}))

	got, err := st.GetPreference(context.Background(), "ai.applyDefaults.bills")
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPreferencePutGetDelete(t *testing.T) {
	st, mock := newMockPostgres(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO preferences").
		WithArgs("ai.applyDefaults.bills", `{"bill_date":false}`, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, st.PutPreference(ctx, "ai.applyDefaults.bills", []byte(`{"bill_date":false}`)))

	mock.ExpectQuery("SELECT value FROM preferences").
		WithArgs("ai.applyDefaults.bills").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`{"bill_date":false}`))
	got, err := st.GetPreference(ctx, "ai.applyDefaults.bills")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bill_date":false}`, string(got))

	mock.ExpectExec("DELETE FROM preferences").
		WithArgs("ai.applyDefaults.bills").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, st.DeletePreference(ctx, "ai.applyDefaults.bills"))

	require.NoError(t, mock.ExpectationsWereMet())
}
