package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/synkro/logistics-core/internal/store"
)

// pgTx adapts pgx.Tx to the store.Tx handle the orchestrator holds across
// create_in_tx calls (spec §4.A "Transactions"). The gateway never commits
// or rolls back a handle it did not itself Begin.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// asPgTx recovers the underlying pgx.Tx from a store.Tx handle. Every
// in-tx method on Repository requires the handle to have come from this
// package's Begin; a foreign handle is a programmer error, not a runtime
// condition to recover from gracefully.
func asPgTx(tx store.Tx) pgx.Tx {
	t, ok := tx.(*pgTx)
	if !ok {
		panic(fmt.Sprintf("postgres: store.Tx handle of type %T did not originate from postgres.Repository.Begin", tx))
	}
	return t.tx
}
