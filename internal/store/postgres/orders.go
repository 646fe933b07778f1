package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/store"
)

// Repository implements store.OrderStore, store.InventoryStore,
// store.CustomerStore and store.ReservationStore over a single pgxpool.Pool,
// mirroring the teacher's single-Repository-per-service shape generalized to
// the full §3 entity set.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func clampPage(p store.Page, defaultLimit, maxLimit int) (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	offset = (page - 1) * limit
	return limit, offset
}

const orderColumns = `id, customer_id, total_amount, status, currency, tracking_number, notes, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var status string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &status, &o.Currency,
		&o.TrackingNumber, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("postgres: unrecognized order status %q", status)
	}
	o.Status = parsed
	return &o, nil
}

func (r *Repository) List(ctx context.Context, p store.Page) ([]domain.Order, error) {
	limit, offset := clampPage(p, 20, 100)
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, p store.Page) ([]domain.Order, error) {
	limit, offset := clampPage(p, 20, 100)
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// Search applies a case-insensitive contains across status and currency,
// plus a literal id match when the pattern parses as a uuid (spec §4.A
// "Search"), grounded in original_source's
// `WHERE status::text ILIKE $1 OR currency ILIKE $1` pattern.
func (r *Repository) Search(ctx context.Context, pattern string, p store.Page) ([]domain.Order, error) {
	limit, offset := clampPage(p, 20, 100)
	like := "%" + pattern + "%"

	if id, err := uuid.Parse(pattern); err == nil {
		rows, err := r.pool.Query(ctx,
			`SELECT `+orderColumns+` FROM orders
			 WHERE id = $1 OR status ILIKE $2 OR currency ILIKE $2
			 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
			id, like, limit, offset)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return collectOrders(rows)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE status ILIKE $1 OR currency ILIKE $1
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		like, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := r.updateInTx(ctx, tx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *Repository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE status = $1`, status.String()).Scan(&n)
	return n, err
}

// SumItemTotals recomputes total_amount independently from order_items,
// supplementing spec §4.A with original_source's calculate_order_total so
// spec §8 invariant 1 is independently checkable.
func (r *Repository) SumItemTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT coalesce(sum(total_price), 0) FROM order_items WHERE order_id = $1`, orderID).Scan(&sum)
	return sum, err
}

func (r *Repository) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

// LockInventoryRowsAscending issues SELECT ... FOR UPDATE on every id in
// ascending order, the deterministic lock order spec §4.A/§9 requires to
// make deadlocks between concurrent order-creations impossible. Callers
// must not skip the sort.
func (r *Repository) LockInventoryRowsAscending(ctx context.Context, tx store.Tx, ids []uuid.UUID) error {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})
	pt := asPgTx(tx)
	for _, id := range sorted {
		var discard uuid.UUID
		if err := pt.QueryRow(ctx, `SELECT id FROM inventory_items WHERE id = $1 FOR UPDATE`, id).Scan(&discard); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) CreateOrderInTx(ctx context.Context, tx store.Tx, order domain.Order) error {
	_, err := asPgTx(tx).Exec(ctx,
		`INSERT INTO orders (id, customer_id, total_amount, status, currency, tracking_number, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.CustomerID, order.TotalAmount, order.Status.String(), order.Currency,
		order.TrackingNumber, order.Notes, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *Repository) CreateItemInTx(ctx context.Context, tx store.Tx, item domain.OrderItem) error {
	_, err := asPgTx(tx).Exec(ctx,
		`INSERT INTO order_items (id, order_id, product_id, sku, name, quantity, unit_price, total_price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.OrderID, item.ProductID, item.SKU, item.Name, item.Quantity,
		item.UnitPrice, item.TotalPrice, item.CreatedAt, item.UpdatedAt)
	return err
}

func (r *Repository) CreatePaymentInTx(ctx context.Context, tx store.Tx, payment domain.PaymentInfo) error {
	_, err := asPgTx(tx).Exec(ctx,
		`INSERT INTO payment_info (id, order_id, payment_method, transaction_id, amount, currency, status, payment_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		payment.ID, payment.OrderID, payment.PaymentMethod, payment.TransactionID, payment.Amount,
		payment.Currency, payment.Status.String(), payment.PaymentDate, payment.CreatedAt, payment.UpdatedAt)
	return err
}

func (r *Repository) CreateShippingInTx(ctx context.Context, tx store.Tx, shipping domain.ShippingInfo) error {
	_, err := asPgTx(tx).Exec(ctx,
		`INSERT INTO shipping_info (id, order_id, address_line1, address_line2, city, state, postal_code, country,
		   recipient_name, recipient_phone, shipping_method, shipping_cost, tracking_number, carrier, status,
		   expected_delivery, actual_delivery, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		shipping.ID, shipping.OrderID, shipping.AddressLine1, shipping.AddressLine2, shipping.City, shipping.State,
		shipping.PostalCode, shipping.Country, shipping.RecipientName, shipping.RecipientPhone, shipping.Method,
		shipping.Cost, shipping.TrackingNumber, shipping.Carrier, shipping.Status.String(),
		shipping.ExpectedDelivery, shipping.ActualDelivery, shipping.CreatedAt, shipping.UpdatedAt)
	return err
}

// DecrementInventoryInTx is the conditional decrement of spec §4.A: a
// zero-row result is the out-of-stock signal, not an error.
func (r *Repository) DecrementInventoryInTx(ctx context.Context, tx store.Tx, inventoryID uuid.UUID, qty int32) (bool, error) {
	var discard uuid.UUID
	err := asPgTx(tx).QueryRow(ctx,
		`UPDATE inventory_items SET quantity = quantity - $1, updated_at = now()
		 WHERE id = $2 AND quantity >= $1
		 RETURNING id`,
		qty, inventoryID).Scan(&discard)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RestoreInventoryInTx is the unconditional increment used by cancellation
// compensation (spec §4.D) — no lower-bound guard, restoration must always
// succeed.
func (r *Repository) RestoreInventoryInTx(ctx context.Context, tx store.Tx, inventoryID uuid.UUID, qty int32) error {
	_, err := asPgTx(tx).Exec(ctx,
		`UPDATE inventory_items SET quantity = quantity + $1, updated_at = now() WHERE id = $2`,
		qty, inventoryID)
	return err
}

func (r *Repository) UpdateInTx(ctx context.Context, tx store.Tx, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error) {
	return r.updateInTx(ctx, asPgTx(tx), id, patch)
}

func (r *Repository) updateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error) {
	current, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	status := current.Status
	if patch.Status != nil {
		status = *patch.Status
	}
	tracking := current.TrackingNumber
	if patch.TrackingNumber != nil {
		tracking = patch.TrackingNumber
	}
	notes := current.Notes
	if patch.Notes != nil {
		notes = patch.Notes
	}

	row := tx.QueryRow(ctx,
		`UPDATE orders SET status = $1, tracking_number = $2, notes = $3, updated_at = now()
		 WHERE id = $4 RETURNING `+orderColumns,
		status.String(), tracking, notes, id)
	return scanOrder(row)
}
