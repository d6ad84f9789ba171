package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sashakosti/Go_Race_Bot/internal/config"
	"github.com/sashakosti/Go_Race_Bot/internal/storage"
)

// openStore - создание хранилища, выбранного в STORE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendWebApp:
		store, err := storage.NewWebApp(cfg.WebAppURL, cfg.WebAppSecret, cfg.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.BackendSheets:
		store, err := storage.NewSheets(ctx, cfg.SpreadsheetID, cfg.CredentialsFile, cfg.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.BackendPostgres:
		store, err := storage.NewPostgres(ctx, cfg.PostgresDSN, cfg.RequestTimeout)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("cannot ping DB: %w", err)
		}
		log.Println("✅ Connected to Postgres")
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
}
