// Package db selects the storage backend named by STORE_DRIVER and vends its
// repositories.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kokoro-wiki/kokoro/internal/core/ports"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/config"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db/memory"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db/mongo"
	"github.com/kokoro-wiki/kokoro/internal/infrastructure/db/postgres"
)

// Repositories is the storage surface the services are built on.
type Repositories struct {
	Driver     string
	Principals ports.PrincipalRepository
	Profiles   ports.ProfileRepository
	Entries    ports.EntryRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the backend answers. Used by the readiness probe.
func (r *Repositories) Ping(ctx context.Context) error {
	if r.ping == nil {
		return nil
	}
	return r.ping(ctx)
}

// Close releases the backend connection.
func (r *Repositories) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}

// Open connects the configured backend, preparing its schema or indexes.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return Memory(memory.NewStore()), nil

	case config.DriverPostgres:
		sqlDB, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		store := postgres.NewStore(sqlDB)
		log.Info().Msg("postgres store ready")
		return &Repositories{
			Driver:     config.DriverPostgres,
			Principals: store.Principals(),
			Profiles:   store.Profiles(),
			Entries:    store.Entries(),
			ping:       store.Ping,
			close:      store.Close,
		}, nil

	case config.DriverMongo, "":
		client, mdb, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, mdb); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &Repositories{
			Driver:     config.DriverMongo,
			Principals: mongo.NewPrincipalRepository(mdb),
			Profiles:   mongo.NewProfileRepository(mdb),
			Entries:    mongo.NewEntryRepository(mdb),
			ping:       func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:      client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Memory wraps an in-process store.
func Memory(store *memory.Store) *Repositories {
	return &Repositories{
		Driver:     config.DriverMemory,
		Principals: store.Principals(),
		Profiles:   store.Profiles(),
		Entries:    store.Entries(),
	}
}
