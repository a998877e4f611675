package main

import (
	"context"
	"fmt"
	"time"

	"github.com/iamasit07/dm-chat/internal/config"
	"github.com/iamasit07/dm-chat/internal/repository/badgerdb"
	"github.com/iamasit07/dm-chat/internal/repository/postgres"
	"github.com/iamasit07/dm-chat/internal/service/chat"
	"github.com/iamasit07/dm-chat/internal/service/cleanup"
	"github.com/iamasit07/dm-chat/internal/service/session"
	"github.com/rs/zerolog"
)

const gcInterval = 10 * time.Minute

type stores struct {
	users    session.CredentialStore
	messages chat.MessageStore
	gc       *cleanup.Worker
	close    func()
}

// openStores selects the credential and chat store backend from STORE_BACKEND.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendBadger:
		store, err := badgerdb.Open(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.BadgerPath).Msg("badger store opened")
		return &stores{
			users:    badgerdb.NewUserRepo(store),
			messages: badgerdb.NewMessageRepo(store),
			gc:       cleanup.NewWorker(store, gcInterval, log),
			close: func() {
				if err := store.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close badger")
				}
			},
		}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, postgres.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}

		log.Info().Str("driver", cfg.DBDriver).Msg("running database migrations")
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("database migration completed")

		return &stores{
			users:    postgres.NewUserRepo(db),
			messages: postgres.NewMessageRepo(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
