// Package postgres implements the persistence gateway (spec §4.A) over
// pgx/v5 + pgxpool, generalizing the teacher's order-only repository
// (services/order/internal/repository/postgres/repository.go) to the full
// §3 entity set.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synkro/logistics-core/internal/config"
)

// NewPool opens a pgxpool.Pool tuned from the process configuration (spec
// §6 "DB pool {max, min, connect_timeout, idle_timeout, max_lifetime}").
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnIdleTime = cfg.IdleTimeout
	poolCfg.MaxConnLifetime = cfg.MaxLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	connectCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// acquireTimeout is a 30s acquisition bound that nothing in this package
// applies: NewPool bounds only the initial connect and ping, with
// DatabaseConfig.AcquireTimeout, and each later query's pool acquisition is
// bounded only by the caller's context.
const acquireTimeout = 30 * time.Second
