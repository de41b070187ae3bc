package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/ledgerline/ingest-cli/internal/model"
)

// pool is the minimal pgx surface the store uses; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	p, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: p}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ai_feedback (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	accepted    BOOLEAN NOT NULL,
	category    TEXT NOT NULL,
	confidence  DOUBLE PRECISION,
	amount      DOUBLE PRECISION,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS contacts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	email      TEXT,
	tax_number TEXT
);

CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ai_feedback_source ON ai_feedback(source);
CREATE INDEX IF NOT EXISTS idx_ai_feedback_created_at ON ai_feedback(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) InsertFeedback(ctx context.Context, fb model.Feedback) (*model.Feedback, error) {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ai_feedback (id, source, accepted, category, confidence, amount, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		fb.ID, fb.Source, fb.Accepted, string(fb.Category),
		fb.Confidence, fb.Amount, fb.Description, fb.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert feedback")
	}
	return &fb, nil
}

func (s *PostgresStore) ListRecentFeedback(ctx context.Context, filter FeedbackFilter) ([]model.Feedback, error) {
	query := `SELECT id, source, accepted, category, confidence, amount, description, created_at
	          FROM ai_feedback`
	var args []any
	if filter.Source != "" {
		query += ` WHERE source = $1`
		args = append(args, filter.Source)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	if filter.Source != "" {
		query += ` ORDER BY created_at DESC LIMIT $2`
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list feedback")
	}
	defer rows.Close()

	var out []model.Feedback
	for rows.Next() {
		var fb model.Feedback
		var confidence, amount *float64
		var description *string
		if err := rows.Scan(&fb.ID, &fb.Source, &fb.Accepted, &fb.Category,
			&confidence, &amount, &description, &fb.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan feedback")
		}
		if confidence != nil {
			fb.Confidence = *confidence
		}
		if amount != nil {
			fb.Amount = *amount
		}
		if description != nil {
			fb.Description = *description
		}
		out = append(out, fb)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate feedback")
}

func (s *PostgresStore) UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (id, name, email, tax_number) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO UPDATE SET email = EXCLUDED.email, tax_number = EXCLUDED.tax_number`,
		c.ID, c.Name, c.Email, c.TaxNumber,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: upsert contact")
	}
	return &c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, email, tax_number FROM contacts ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var out []model.Contact
	for rows.Next() {
		var c model.Contact
		var email, taxNumber *string
		if err := rows.Scan(&c.ID, &c.Name, &email, &taxNumber); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		if email != nil {
			c.Email = *email
		}
		if taxNumber != nil {
			c.TaxNumber = *taxNumber
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate contacts")
}

func (s *PostgresStore) GetPreference(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get preference %s", key)
	}
	return []byte(value), nil
}

func (s *PostgresStore) PutPreference(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: put preference %s", key)
}

func (s *PostgresStore) DeletePreference(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM preferences WHERE key = $1`, key)
	return eris.Wrapf(err, "postgres: delete preference %s", key)
}
