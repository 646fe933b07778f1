package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/synkro/logistics-core/internal/domain"
)

const orderItemColumns = `id, order_id, product_id, sku, name, quantity, unit_price, total_price, created_at, updated_at`

func scanOrderItem(row pgx.Row) (*domain.OrderItem, error) {
	var it domain.OrderItem
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SKU, &it.Name, &it.Quantity,
		&it.UnitPrice, &it.TotalPrice, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// UpdateItemQuantity recomputes total_price from the new quantity (spec
// §4.D "update_order_item(item_id, quantity) ... recomputes total_price").
// Caller validates quantity >= 1 before calling.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int32) (*domain.OrderItem, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE order_items
		 SET quantity = $1, total_price = unit_price * $1, updated_at = now()
		 WHERE id = $2
		 RETURNING `+orderItemColumns,
		quantity, itemID)
	it, err := scanOrderItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
