package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/store"
)

const inventoryColumns = `id, sku, name, description, warehouse_id, quantity, price, attributes, category,
	low_stock_threshold, overstock_threshold, created_at, updated_at`

func scanInventoryItem(row pgx.Row) (*domain.InventoryItem, error) {
	var it domain.InventoryItem
	var attrs []byte
	if err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Description, &it.WarehouseID, &it.Quantity, &it.Price,
		&attrs, &it.Category, &it.LowStockThreshold, &it.OverstockThreshold, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &it.Attributes); err != nil {
			return nil, err
		}
	}
	return &it, nil
}

func (r *Repository) listInventory(ctx context.Context, where string, args []any, limit, offset int) ([]domain.InventoryItem, error) {
	args = append(args, limit, offset)
	q := `SELECT ` + inventoryColumns + ` FROM inventory_items`
	if where != "" {
		q += " WHERE " + where
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0)
	for rows.Next() {
		it, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *Repository) ListInventoryItems(ctx context.Context, p store.Page) ([]domain.InventoryItem, error) {
	limit, offset := clampPage(p, 20, 100)
	return r.listInventory(ctx, "", nil, limit, offset)
}

// SearchInventoryItems applies a case-insensitive contains across sku/name/category plus a
// literal id match when the pattern parses as a uuid (spec §4.A).
func (r *Repository) SearchInventoryItems(ctx context.Context, pattern string, p store.Page) ([]domain.InventoryItem, error) {
	limit, offset := clampPage(p, 20, 100)
	like := "%" + pattern + "%"
	if id, err := uuid.Parse(pattern); err == nil {
		return r.listInventory(ctx, "id = $1 OR sku ILIKE $2 OR name ILIKE $2 OR category ILIKE $2",
			[]any{id, like}, limit, offset)
	}
	return r.listInventory(ctx, "sku ILIKE $1 OR name ILIKE $1 OR category ILIKE $1", []any{like}, limit, offset)
}

func (r *Repository) FindItemByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id)
	it, err := scanInventoryItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

func (r *Repository) FindBySKU(ctx context.Context, warehouseID uuid.UUID, sku string) (*domain.InventoryItem, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE warehouse_id = $1 AND sku = $2`, warehouseID, sku)
	it, err := scanInventoryItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

// RandomItem backs the synthetic producer's fallback sampling path (spec
// §4.E "random-item fallback").
func (r *Repository) RandomItem(ctx context.Context) (*domain.InventoryItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY random() LIMIT 1`)
	it, err := scanInventoryItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

func (r *Repository) CountInventoryItems(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM inventory_items`).Scan(&n)
	return n, err
}
