//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib" // goose migration driver

	"github.com/synkro/logistics-core/internal/domain"
)

// newTestRepository spins up a disposable Postgres container, applies the
// repo's goose migrations, and returns a *Repository over it, mirroring the
// teacher's repository_integration_test.go container+migrate+pool sequence.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("logistics_core_test"),
		postgres.WithUsername("orchestrator"),
		postgres.WithPassword("orchestrator"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var pingErr error
	for i := 0; i < 10; i++ {
		if pingErr = db.PingContext(ctx); pingErr == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, pingErr, "postgres container never became reachable")

	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok)
	// internal/store/postgres -> internal/store -> internal -> <module root>
	migrationsDir := filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations")
	require.NoError(t, goose.UpContext(ctx, db, migrationsDir))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRepository(pool)
}

func seedCustomer(t *testing.T, repo *Repository) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := repo.pool.QueryRow(context.Background(),
		`INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id`,
		"Jane Doe", "jane@example.com").Scan(&id)
	require.NoError(t, err)
	return id
}

func seedInventoryItem(t *testing.T, repo *Repository, warehouseID uuid.UUID, sku string, qty int32) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := repo.pool.QueryRow(context.Background(),
		`INSERT INTO inventory_items (sku, name, warehouse_id, quantity, price)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sku, "Widget", warehouseID, qty, decimal.NewFromInt(10)).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestRepository_CreateOrderInTx_DecrementAndLock exercises spec §4.A/§8's
// core transactional path: begin, lock inventory rows ascending, insert
// order/item/payment/shipping, conditional decrement, commit.
func TestRepository_CreateOrderInTx_DecrementAndLock(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	customerID := seedCustomer(t, repo)
	warehouseID := uuid.New()
	productID := seedInventoryItem(t, repo, warehouseID, "SKU-1", 10)

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.LockInventoryRowsAscending(ctx, tx, []uuid.UUID{productID}))

	orderID := uuid.New()
	now := time.Now().UTC()
	order := domain.Order{
		ID: orderID, CustomerID: customerID, Status: domain.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(20), Currency: "USD", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateOrderInTx(ctx, tx, order))

	item := domain.OrderItem{
		ID: uuid.New(), OrderID: orderID, ProductID: productID, SKU: "SKU-1", Name: "Widget",
		Quantity: 2, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(20),
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateItemInTx(ctx, tx, item))

	payment := domain.PaymentInfo{
		ID: uuid.New(), OrderID: orderID, PaymentMethod: "card", Amount: decimal.NewFromInt(20),
		Currency: "USD", Status: domain.PaymentStatusPending, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreatePaymentInTx(ctx, tx, payment))

	shipping := domain.ShippingInfo{
		ID: uuid.New(), OrderID: orderID, AddressLine1: "1 Main St", City: "Springfield",
		State: "IL", PostalCode: "62704", Country: "US", RecipientName: "Jane Doe",
		Method: "standard", Cost: decimal.NewFromInt(5), Status: domain.ShippingStatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.CreateShippingInTx(ctx, tx, shipping))

	ok, err := repo.DecrementInventoryInTx(ctx, tx, productID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, tx.Commit(ctx))

	got, err := repo.FindByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domain.OrderStatusPending, got.Status)
	require.True(t, got.TotalAmount.Equal(decimal.NewFromInt(20)))

	invItem, err := repo.FindItemByID(ctx, productID)
	require.NoError(t, err)
	require.NotNil(t, invItem)
	require.Equal(t, int32(8), invItem.Quantity)
}

// TestRepository_DecrementInventoryInTx_OutOfStock verifies spec §8
// invariant 2: a decrement that would take quantity below zero returns
// ok=false and leaves the row unchanged.
func TestRepository_DecrementInventoryInTx_OutOfStock(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	warehouseID := uuid.New()
	productID := seedInventoryItem(t, repo, warehouseID, "SKU-2", 1)

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.LockInventoryRowsAscending(ctx, tx, []uuid.UUID{productID}))

	ok, err := repo.DecrementInventoryInTx(ctx, tx, productID, 5)
	require.NoError(t, err)
	require.False(t, ok)

	item, err := repo.FindItemByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(1), item.Quantity)
}

// TestRepository_RestoreInventoryInTx_CancellationCompensation exercises the
// unconditional increment used by cancellation compensation (spec §4.D).
func TestRepository_RestoreInventoryInTx_CancellationCompensation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	warehouseID := uuid.New()
	productID := seedInventoryItem(t, repo, warehouseID, "SKU-3", 5)

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.LockInventoryRowsAscending(ctx, tx, []uuid.UUID{productID}))
	ok, err := repo.DecrementInventoryInTx(ctx, tx, productID, 3)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.RestoreInventoryInTx(ctx, tx, productID, 3))
	require.NoError(t, tx.Commit(ctx))

	item, err := repo.FindItemByID(ctx, productID)
	require.NoError(t, err)
	require.Equal(t, int32(5), item.Quantity)
}

// TestRepository_Customers_AnyExists_RandomCustomerID exercises the small
// customer surface the producer needs (spec §4.E "Pre-check").
func TestRepository_Customers_AnyExists_RandomCustomerID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	any, err := repo.AnyExists(ctx)
	require.NoError(t, err)
	require.False(t, any)

	customerID := seedCustomer(t, repo)

	any, err = repo.AnyExists(ctx)
	require.NoError(t, err)
	require.True(t, any)

	exists, err := repo.Exists(ctx, customerID)
	require.NoError(t, err)
	require.True(t, exists)

	random, ok, err := repo.RandomCustomerID(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, customerID, random)
}
