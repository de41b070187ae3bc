package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ledgerline/ingest-cli/internal/extractor"
	"github.com/ledgerline/ingest-cli/internal/store"
)

// initStore opens the configured persistence backend and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// newBackend builds the extraction backend client from config.
func newBackend() *extractor.Client {
	return extractor.New(extractor.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIToken:   cfg.Backend.APIToken,
		Timeout:    time.Duration(cfg.Backend.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Backend.MaxRetries,
	})
}
