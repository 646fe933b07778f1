// Package store defines the persistence gateway contract (spec §4.A):
// typed operations over orders, order_items, inventory_items, payment_info,
// shipping_info, and inventory_reservations, plus the explicit transaction
// handle used by the orchestrator for create_in_tx and friends.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/synkro/logistics-core/internal/domain"
)

// Tx is an opaque, caller-owned transaction handle. The gateway never calls
// Commit or Rollback on a handle it did not itself Begin (spec §4.A
// "Transactions").
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Page describes a 1-based paginated list request (spec §4.A "Pagination").
type Page struct {
	Page  int
	Limit int
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=OrderStore --dir=. --output=./mocks --outpkg=mocks

// OrderStore is the order-entity slice of the persistence gateway.
type OrderStore interface {
	List(ctx context.Context, p Page) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, p Page) ([]domain.Order, error)
	// Search applies a free-text, case-insensitive contains across status and
	// currency, plus a literal id match when the pattern parses as a uuid
	// (spec §4.A "Search"; supplemented from original_source's
	// order_repository.rs search_orders).
	Search(ctx context.Context, pattern string, p Page) ([]domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
	// SumItemTotals independently recomputes total_amount from order_items,
	// exercising spec §8 invariant 1 (supplemented from original_source's
	// calculate_order_total).
	SumItemTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	// Begin opens a transaction for the create_in_tx family (spec §4.A).
	Begin(ctx context.Context) (Tx, error)
	// LockInventoryRowsAscending issues SELECT ... FOR UPDATE on the given
	// inventory ids in ascending order, establishing the deterministic lock
	// order described in spec §4.A/§9.
	LockInventoryRowsAscending(ctx context.Context, tx Tx, ids []uuid.UUID) error
	CreateOrderInTx(ctx context.Context, tx Tx, order domain.Order) error
	CreateItemInTx(ctx context.Context, tx Tx, item domain.OrderItem) error
	CreatePaymentInTx(ctx context.Context, tx Tx, payment domain.PaymentInfo) error
	CreateShippingInTx(ctx context.Context, tx Tx, shipping domain.ShippingInfo) error
	// DecrementInventoryInTx performs the conditional UPDATE of spec §4.A
	// ("Decrement"): returns ok=false when the row would go below zero.
	DecrementInventoryInTx(ctx context.Context, tx Tx, inventoryID uuid.UUID, qty int32) (ok bool, err error)
	// RestoreInventoryInTx performs the unconditional increment used by
	// cancellation compensation (spec §4.D).
	RestoreInventoryInTx(ctx context.Context, tx Tx, inventoryID uuid.UUID, qty int32) error
	UpdateInTx(ctx context.Context, tx Tx, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error)

	ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int32) (*domain.OrderItem, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) (bool, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryStore --dir=. --output=./mocks --outpkg=mocks

// InventoryStore is the inventory-entity slice of the persistence gateway.
type InventoryStore interface {
	ListInventoryItems(ctx context.Context, p Page) ([]domain.InventoryItem, error)
	SearchInventoryItems(ctx context.Context, pattern string, p Page) ([]domain.InventoryItem, error)
	// FindItemByID is named distinctly from OrderStore.FindByID: a single
	// Repository implements both interfaces, and Go does not allow two
	// methods of the same name with different signatures on one type.
	FindItemByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	FindBySKU(ctx context.Context, warehouseID uuid.UUID, sku string) (*domain.InventoryItem, error)
	RandomItem(ctx context.Context) (*domain.InventoryItem, error)
	CountInventoryItems(ctx context.Context) (int64, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CustomerStore --dir=. --output=./mocks --outpkg=mocks

// CustomerStore covers the small customer surface the producer needs
// (existence checks and sampling); full customer CRUD is an explicit
// Non-goal (spec §1).
type CustomerStore interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	AnyExists(ctx context.Context) (bool, error)
	RandomCustomerID(ctx context.Context) (uuid.UUID, bool, error)
	FirstCustomerID(ctx context.Context) (uuid.UUID, bool, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ReservationStore --dir=. --output=./mocks --outpkg=mocks

// ReservationStore persists the local mirror of remote reservations (spec §3
// InventoryReservation).
type ReservationStore interface {
	Create(ctx context.Context, r domain.InventoryReservation) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.ReservationStatus) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.InventoryReservation, error)
}

// timeNow is indirected so store tests can freeze time; production code
// always calls time.Now directly except where noted.
var timeNow = time.Now
