package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ai_feedback (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	accepted    INTEGER NOT NULL,
	category    TEXT NOT NULL,
	confidence  REAL,
	amount      REAL,
	description TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS contacts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT,
	tax_number TEXT
);

CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_ai_feedback_source ON ai_feedback(source);
CREATE INDEX IF NOT EXISTS idx_ai_feedback_created_at ON ai_feedback(created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_name ON contacts(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertFeedback(ctx context.Context, fb model.Feedback) (*model.Feedback, error) {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ai_feedback (id, source, accepted, category, confidence, amount, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fb.ID, fb.Source, boolToInt(fb.Accepted), string(fb.Category),
		fb.Confidence, fb.Amount, fb.Description, fb.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert feedback")
	}
	return &fb, nil
}

func (s *SQLiteStore) ListRecentFeedback(ctx context.Context, filter FeedbackFilter) ([]model.Feedback, error) {
	query := `SELECT id, source, accepted, category, confidence, amount, description, created_at
	          FROM ai_feedback WHERE 1=1`
	var args []any
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list feedback")
	}
	defer rows.Close()

	var out []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		var accepted int
		var confidence, amount sql.NullFloat64
		var description sql.NullString
		if err := rows.Scan(&fb.ID, &fb.Source, &accepted, &fb.Category,
			&confidence, &amount, &description, &fb.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan feedback")
		}
		fb.Accepted = accepted != 0
		fb.Confidence = confidence.Float64
		fb.Amount = amount.Float64
		fb.Description = description.String
		out = append(out, fb)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate feedback")
}

func (s *SQLiteStore) UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, tax_number) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET email = excluded.email, tax_number = excluded.tax_number`,
		c.ID, c.Name, c.Email, c.TaxNumber,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: upsert contact")
	}
	return &c, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, tax_number FROM contacts ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var c model.Contact
		var email, taxNumber sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &email, &taxNumber); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		c.Email = email.String
		c.TaxNumber = taxNumber.String
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func (s *SQLiteStore) GetPreference(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get preference %s", key)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) PutPreference(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: put preference %s", key)
}

func (s *SQLiteStore) DeletePreference(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	return eris.Wrapf(err, "sqlite: delete preference %s", key)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
