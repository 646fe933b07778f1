package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/synkro/logistics-core/internal/domain"
)

// Create persists the local mirror of a remote reservation pre-reserved via
// the inventory RPC client (spec §3 InventoryReservation, §4.C).
func (r *Repository) Create(ctx context.Context, res domain.InventoryReservation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO inventory_reservations (id, order_id, product_id, sku, quantity, status, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.OrderID, res.ProductID, res.SKU, res.Quantity, res.Status.String(),
		res.ExpiresAt, res.CreatedAt, res.UpdatedAt)
	return err
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.ReservationStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE inventory_reservations SET status = $1, updated_at = now() WHERE order_id = $2`,
		status.String(), orderID)
	return err
}

func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.InventoryReservation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, sku, quantity, status, expires_at, created_at, updated_at
		 FROM inventory_reservations WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.InventoryReservation, 0)
	for rows.Next() {
		var res domain.InventoryReservation
		var status string
		if err := rows.Scan(&res.ID, &res.OrderID, &res.ProductID, &res.SKU, &res.Quantity, &status,
			&res.ExpiresAt, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		if parsed, ok := domain.ParseReservationStatus(status); ok {
			res.Status = parsed
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
