package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderItemDTO is one requested line item on order creation.
type CreateOrderItemDTO struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Quantity  int32
	UnitPrice decimal.Decimal
}

// CreateShippingInfoDTO carries the shipping details submitted with an order.
type CreateShippingInfoDTO struct {
	AddressLine1   string
	AddressLine2   *string
	City           string
	State          string
	PostalCode     string
	Country        string
	RecipientName  string
	RecipientPhone *string
	Method         string
	Cost           decimal.Decimal
}

// CreatePaymentInfoDTO carries the payment details submitted with an order.
type CreatePaymentInfoDTO struct {
	PaymentMethod string
	TransactionID *string
	Currency      string
	PaymentDate   *time.Time
}

// CreateOrderDTO is the orchestrator's CreateOrder input (spec §4.D).
type CreateOrderDTO struct {
	CustomerID  uuid.UUID
	Items       []CreateOrderItemDTO
	Shipping    CreateShippingInfoDTO
	Payment     CreatePaymentInfoDTO
	Notes       *string
	Currency    string // defaults to "USD" when empty
	WarehouseID uuid.UUID
}

// UpdateOrderDTO is a sparse patch: nil fields preserve the current value
// (spec §4.A "update (from a sparse update DTO that preserves current values
// for unspecified fields)").
type UpdateOrderDTO struct {
	Status         *OrderStatus
	TrackingNumber *string
	Notes          *string
}
