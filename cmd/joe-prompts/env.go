package main

import (
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-prompts/internal/config"
	"github.com/joestump/joe-prompts/internal/db"
	"github.com/joestump/joe-prompts/internal/logging"
	"github.com/joestump/joe-prompts/internal/store"
)

// env is the opened, migrated database plus the stores built on it. Every
// subcommand that touches prompts starts from one.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sqlx.DB
	prompts *store.PromptStore
	tags    *store.TagStore
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		_ = database.Close()
		return nil, err
	}

	return &env{
		cfg:     cfg,
		log:     log,
		db:      database,
		prompts: store.NewPromptStore(database, cfg.KeepVersions),
		tags:    store.NewTagStore(database),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}
