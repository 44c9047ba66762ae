// Package app assembles storage, services and their collaborators from
// configuration for the server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/repository/memory"
	"github.com/spec-kit/ticket-tracker/internal/service"
)

// Container holds the wired components.
type Container struct {
	Postgres      *persistence.Postgres
	Redis         *persistence.Redis
	Store         repository.Store
	Dispatcher    events.Dispatcher
	Tokens        *auth.TokenManager
	Revocations   auth.RevocationList
	AuthService   *service.AuthService
	TicketService *service.TicketService
	Relay         *events.RedisRelay
}

// Options tune what Build connects to.
type Options struct {
	// SkipMigrations leaves the schema alone even when configured to migrate.
	SkipMigrations bool
}

// Build connects storage and constructs services. Postgres is used when a
// DSN is configured, otherwise an in-memory store. Redis backs token
// revocation and the event relay when an address is configured.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Container, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var store repository.Store
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations && !opts.SkipMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = memory.NewStore()
	}

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)

	var (
		revocations auth.RevocationList
		relay       *events.RedisRelay
	)
	if rdb.Enabled() {
		revocations = auth.NewRedisRevocationList(rdb.Client)
		relay = events.NewRedisRelay(rdb.Client, cfg.Redis.EventsChannel)
	} else {
		revocations = auth.NewMemoryRevocationList()
	}

	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())

	return &Container{
		Postgres:    pg,
		Redis:       rdb,
		Store:       store,
		Dispatcher:  dispatcher,
		Tokens:      tokens,
		Revocations: revocations,
		AuthService: service.NewAuthService(service.AuthDependencies{
			Store:       store,
			Tokens:      tokens,
			Revocations: revocations,
			Dispatcher:  dispatcher,
			BcryptCost:  cfg.Auth.BcryptCost,
			Logger:      logger,
		}),
		TicketService: service.NewTicketService(service.TicketDependencies{
			Store:      store,
			Dispatcher: dispatcher,
			Logger:     logger,
		}),
		Relay: relay,
	}, nil
}

// Close releases connections.
func (c *Container) Close() {
	c.Redis.Close()
	c.Postgres.Close()
}
