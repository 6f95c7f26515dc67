package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/directory/internal/store"
)

// Config holds configuration for the PostgreSQL directory stores.
type Config struct {
	PoolConfig

	// AutoMigrate applies the embedded schema migrations on open.
	AutoMigrate bool
}

// Open creates the connection pool, optionally migrates the schema and returns
// the organization and user stores sharing that pool. The caller owns the pool
// and must close it.
func Open(ctx context.Context, cfg *Config) (store.Stores, *pgxpool.Pool, error) {
	if cfg == nil {
		return store.Stores{}, nil, fmt.Errorf("postgres config is required")
	}

	pool, err := NewPool(ctx, &cfg.PoolConfig)
	if err != nil {
		return store.Stores{}, nil, err
	}

	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return NewStores(pool), pool, nil
}

// NewStores wires both stores onto an existing pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Organizations: NewOrganizationStore(pool),
		Users:         NewUserStore(pool),
	}
}
