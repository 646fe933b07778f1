// Package domain holds the shared entities and DTOs of the order-orchestration
// core (spec §3, §4.F): Order, OrderItem, InventoryItem, PaymentInfo,
// ShippingInfo, InventoryReservation, and the status enums in status.go.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the aggregate root. Mutated only by the orchestrator (status,
// notes, tracking_number, updated_at); never deleted through the core API.
type Order struct {
	ID              uuid.UUID
	CustomerID      uuid.UUID
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	Currency        string
	TrackingNumber  *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a line item on an Order. TotalPrice must equal
// UnitPrice*Quantity to the store's precision (spec §8 invariant 1).
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	SKU         string
	Name        string
	Quantity    int32
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InventoryItem is a stock row for a single warehouse. Quantity never goes
// below zero through any successful orchestrator path (spec §8 invariant 2).
type InventoryItem struct {
	ID                uuid.UUID
	SKU               string
	Name              string
	Description       *string
	WarehouseID       uuid.UUID
	Quantity          int32
	Price             decimal.Decimal
	Category          *string
	LowStockThreshold *int32
	OverstockThreshold *int32
	Attributes        map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PaymentInfo: exactly one is created per created Order; later state
// changes are in-place.
type PaymentInfo struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	PaymentMethod string
	TransactionID *string
	Amount        decimal.Decimal
	Currency      string
	Status        PaymentStatus
	PaymentDate   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ShippingInfo holds the one shipping record owned by an Order.
type ShippingInfo struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	AddressLine1      string
	AddressLine2      *string
	City              string
	State             string
	PostalCode        string
	Country           string
	RecipientName     string
	RecipientPhone    *string
	Method            string
	Cost              decimal.Decimal
	Carrier           *string
	TrackingNumber    *string
	Status            ShippingStatus
	ExpectedDelivery  *time.Time
	ActualDelivery    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InventoryReservation is a soft-hold on remote inventory recorded prior to
// commit (the advisory RPC pre-reserve of spec §4.C/§4.D).
type InventoryReservation struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Quantity  int32
	Status    ReservationStatus
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
