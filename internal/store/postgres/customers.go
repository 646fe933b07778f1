package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AnyExists, RandomCustomerID, and FirstCustomerID back the producer's
// pre-checks and customer sampling (spec §4.E "Pre-check"); Exists reports
// whether a single customer id is present. The orchestrator does not use
// these. Full customer CRUD is an explicit Non-goal (spec §1).

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT exists(SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *Repository) AnyExists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT exists(SELECT 1 FROM customers)`).Scan(&exists)
	return exists, err
}

func (r *Repository) RandomCustomerID(ctx context.Context) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM customers ORDER BY random() LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.UUID{}, false, nil
		}
		return uuid.UUID{}, false, err
	}
	return id, true, nil
}

func (r *Repository) FirstCustomerID(ctx context.Context) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM customers ORDER BY created_at ASC LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.UUID{}, false, nil
		}
		return uuid.UUID{}, false, err
	}
	return id, true, nil
}
