package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/errs"
	"github.com/synkro/logistics-core/internal/eventbus"
	"github.com/synkro/logistics-core/internal/inventoryrpc"
	"github.com/synkro/logistics-core/internal/platform/tracing"
	"github.com/synkro/logistics-core/internal/store"
)

// tracer is shared by every orchestrator span, matching the teacher's
// otel.Tracer("order") convention.
var tracer = otel.Tracer("orchestrator")

// timeNow is indirected so tests can freeze time, mirroring internal/store's
// own timeNow seam.
var timeNow = time.Now

// Orchestrator coordinates the persistence gateway, the inventory RPC
// client, and the event bus to implement spec §4.D's state machine. It is
// a process-wide singleton; per-order state lives only in the store (spec
// §5 "Shared state").
type Orchestrator struct {
	orders       store.OrderStore
	inventory    store.InventoryStore
	reservations store.ReservationStore
	inventoryRPC InventoryClient
	bus          eventbus.Publisher
	logger       *zap.Logger
}

func New(orders store.OrderStore, inventory store.InventoryStore, reservations store.ReservationStore,
	inventoryRPC InventoryClient, bus eventbus.Publisher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		orders:       orders,
		inventory:    inventory,
		reservations: reservations,
		inventoryRPC: inventoryRPC,
		bus:          bus,
		logger:       logger,
	}
}

// validateCreateOrderDTO enforces spec §8's boundary behaviors before any
// store or RPC work is attempted.
func validateCreateOrderDTO(dto domain.CreateOrderDTO) error {
	if len(dto.Items) == 0 {
		return errs.NewValidationError("order must contain at least one item")
	}
	for _, item := range dto.Items {
		if item.Quantity < 1 {
			return errs.NewValidationError(fmt.Sprintf("item %s: quantity must be >= 1", item.SKU))
		}
		if item.UnitPrice.Cmp(decimal.Zero) <= 0 {
			return errs.NewValidationError(fmt.Sprintf("item %s: unit_price must be > 0", item.SKU))
		}
	}
	return nil
}

// CreateOrder implements spec §4.D's create-order operation: pre-reserve,
// transactional insert with row locking, conditional decrement, and
// best-effort publish. Product ids in CreateOrderItemDTO are inventory_item
// ids directly — there is no separate product catalog in this system (spec
// §3/§4.A "Decrement" operates on the same `id` the order item carries).
func (o *Orchestrator) CreateOrder(ctx context.Context, dto domain.CreateOrderDTO) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.CreateOrder", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if err := validateCreateOrderDTO(dto); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if dto.Currency == "" {
		dto.Currency = "USD"
	}

	orderID := uuid.New()
	now := timeNow()

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(dto.Items))
	for _, it := range dto.Items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt32(it.Quantity))
		total = total.Add(lineTotal)
		items = append(items, domain.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			ProductID:  it.ProductID,
			SKU:        it.SKU,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: lineTotal,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	// Step 1: pre-reserve via the inventory RPC client. Business failure
	// rejects the order outright; transport failure is logged and the
	// flow continues (spec §4.D step 1).
	reservationID, preReserveMessage, preReserved := o.preReserve(ctx, orderID, dto, items)
	if preReserved == preReserveBadRequest {
		err := errs.NewBadRequestError(fmt.Sprintf("Inventory check failed: %s", preReserveMessage))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	payment := domain.PaymentInfo{
		ID:            uuid.New(),
		OrderID:       orderID,
		PaymentMethod: dto.Payment.PaymentMethod,
		TransactionID: dto.Payment.TransactionID,
		Amount:        total,
		Currency:      dto.Currency,
		Status:        domain.PaymentStatusPending,
		PaymentDate:   dto.Payment.PaymentDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	shipping := domain.ShippingInfo{
		ID:             uuid.New(),
		OrderID:        orderID,
		AddressLine1:   dto.Shipping.AddressLine1,
		AddressLine2:   dto.Shipping.AddressLine2,
		City:           dto.Shipping.City,
		State:          dto.Shipping.State,
		PostalCode:     dto.Shipping.PostalCode,
		Country:        dto.Shipping.Country,
		RecipientName:  dto.Shipping.RecipientName,
		RecipientPhone: dto.Shipping.RecipientPhone,
		Method:         dto.Shipping.Method,
		Cost:           dto.Shipping.Cost,
		Status:         domain.ShippingStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ids := distinctProductIDs(items)

	order, outOfStockProduct, err := o.tryCreateWithDecrement(ctx, orderID, dto.CustomerID, total, dto.Currency, dto.Notes, now, items, payment, shipping, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if outOfStockProduct != "" {
		// Step 6: the create-tx was rolled back; re-create the order as
		// OutOfStock in a fresh transaction so the customer is informed
		// (spec §4.D step 6).
		order, err = o.createOutOfStock(ctx, orderID, dto.CustomerID, total, dto.Currency, now, items, payment, shipping, outOfStockProduct)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, errs.NewBadRequestError(fmt.Sprintf("Insufficient inventory for product %s", outOfStockProduct))
		}
		o.logger.Warn("order transitioned to out_of_stock",
			zap.String("order_id", orderID.String()), zap.String("product_id", outOfStockProduct))
		return order, nil
	}

	// Step 9 (open question resolution): commit the remote reservation
	// after the DB transaction commits; non-fatal on failure.
	if preReserved == preReserveOK {
		o.finalizeReservation(ctx, orderID, reservationID, items)
	}

	// Step 8: publish OrderCreated. Failure is logged, never fails the
	// order — it is already durable in the store (spec §4.D step 8).
	o.publish(ctx, eventbus.EventOrderCreated, eventbus.RoutingOrderCreated, map[string]any{
		"order_id":     order.ID.String(),
		"customer_id":  order.CustomerID.String(),
		"status":       order.Status.String(),
		"total_amount": order.TotalAmount.String(),
		"item_count":   len(items),
	})

	return order, nil
}

type preReserveOutcome int

const (
	preReserveSkipped preReserveOutcome = iota
	preReserveOK
	preReserveBadRequest
)

// preReserve calls the inventory RPC client's check-and-reserve. A
// transport error is logged and treated as preReserveSkipped (the local
// transaction remains authoritative); a business failure is
// preReserveBadRequest (spec §4.D step 1).
func (o *Orchestrator) preReserve(ctx context.Context, orderID uuid.UUID, dto domain.CreateOrderDTO, items []domain.OrderItem) (reservationID, message string, outcome preReserveOutcome) {
	if o.inventoryRPC == nil {
		return "", "", preReserveSkipped
	}

	rpcItems := make([]inventoryrpc.ProductItem, 0, len(items))
	for _, it := range items {
		rpcItems = append(rpcItems, inventoryrpc.ProductItem{
			ProductID: it.ProductID.String(),
			SKU:       it.SKU,
			Quantity:  it.Quantity,
		})
	}

	resp, err := o.inventoryRPC.CheckAndReserveStock(ctx, inventoryrpc.CheckAndReserveStockRequest{
		OrderID:     orderID.String(),
		Items:       rpcItems,
		WarehouseID: dto.WarehouseID.String(),
	})
	if err != nil {
		tracing.WithTrace(ctx, o.logger).Warn("inventory pre-reserve transport failure, continuing without remote reservation",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return "", "", preReserveSkipped
	}
	if !resp.Success {
		return "", resp.Message, preReserveBadRequest
	}
	return resp.ReservationID, "", preReserveOK
}

// finalizeReservation persists the local reservation mirror, calls
// CommitReservation, and marks the mirror Confirmed. All failures are
// logged non-fatally (spec §9 "Open question — reservation → commit").
func (o *Orchestrator) finalizeReservation(ctx context.Context, orderID uuid.UUID, reservationID string, items []domain.OrderItem) {
	now := timeNow()
	for _, it := range items {
		res := domain.InventoryReservation{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			Status:    domain.ReservationStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := o.reservations.Create(ctx, res); err != nil {
			o.logger.Warn("failed to persist reservation mirror", zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}

	if o.inventoryRPC != nil && reservationID != "" {
		_, err := o.inventoryRPC.CommitReservation(ctx, inventoryrpc.CommitReservationRequest{
			ReservationID: reservationID,
			OrderID:       orderID.String(),
		})
		if err != nil {
			o.logger.Warn("commit_reservation failed, non-fatal", zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}

	if err := o.reservations.UpdateStatus(ctx, orderID, domain.ReservationStatusConfirmed); err != nil {
		o.logger.Warn("failed to mark reservation confirmed", zap.String("order_id", orderID.String()), zap.Error(err))
	}
}

func distinctProductIDs(items []domain.OrderItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// tryCreateWithDecrement opens the order-creation transaction (spec §4.D
// steps 2-7): lock inventory rows in ascending id order, insert the order
// and its children, then conditionally decrement each line item. A zero-row
// decrement rolls back everything and reports the offending product id so
// the caller can take the OutOfStock path.
func (o *Orchestrator) tryCreateWithDecrement(ctx context.Context, orderID, customerID uuid.UUID, total decimal.Decimal,
	currency string, notes *string, now time.Time, items []domain.OrderItem, payment domain.PaymentInfo,
	shipping domain.ShippingInfo, ids []uuid.UUID) (*domain.Order, string, error) {

	tx, err := o.orders.Begin(ctx)
	if err != nil {
		return nil, "", errs.NewDatabaseError("begin create_order tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := o.orders.LockInventoryRowsAscending(ctx, tx, ids); err != nil {
		return nil, "", errs.NewDatabaseError("lock inventory rows", err)
	}

	order := domain.Order{
		ID:          orderID,
		CustomerID:  customerID,
		Status:      domain.OrderStatusPending,
		TotalAmount: total,
		Currency:    currency,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.orders.CreateOrderInTx(ctx, tx, order); err != nil {
		return nil, "", errs.NewDatabaseError("insert order", err)
	}
	for _, it := range items {
		if err := o.orders.CreateItemInTx(ctx, tx, it); err != nil {
			return nil, "", errs.NewDatabaseError("insert order item", err)
		}
	}
	if err := o.orders.CreatePaymentInTx(ctx, tx, payment); err != nil {
		return nil, "", errs.NewDatabaseError("insert payment", err)
	}
	if err := o.orders.CreateShippingInTx(ctx, tx, shipping); err != nil {
		return nil, "", errs.NewDatabaseError("insert shipping", err)
	}

	for _, it := range items {
		ok, err := o.orders.DecrementInventoryInTx(ctx, tx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, "", errs.NewDatabaseError("decrement inventory", err)
		}
		if !ok {
			return nil, it.ProductID.String(), nil
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", errs.NewDatabaseError("commit create_order tx", err)
	}
	committed = true

	return &order, "", nil
}

// createOutOfStock re-inserts the order (now carrying status OutOfStock and
// an explanatory note) in a fresh transaction, without attempting any
// decrement, after the original attempt's transaction has been rolled back
// (spec §4.D step 6).
func (o *Orchestrator) createOutOfStock(ctx context.Context, orderID, customerID uuid.UUID, total decimal.Decimal,
	currency string, now time.Time, items []domain.OrderItem, payment domain.PaymentInfo, shipping domain.ShippingInfo,
	outOfStockProduct string) (*domain.Order, error) {

	tx, err := o.orders.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	note := fmt.Sprintf("Insufficient inventory for product %s", outOfStockProduct)
	order := domain.Order{
		ID:          orderID,
		CustomerID:  customerID,
		Status:      domain.OrderStatusOutOfStock,
		TotalAmount: total,
		Currency:    currency,
		Notes:       &note,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := o.orders.CreateOrderInTx(ctx, tx, order); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := o.orders.CreateItemInTx(ctx, tx, it); err != nil {
			return nil, err
		}
	}
	if err := o.orders.CreatePaymentInTx(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := o.orders.CreateShippingInTx(ctx, tx, shipping); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return &order, nil
}

// publish emits an event and logs, never fails, a publish failure (spec
// §4.D step 8, §9 "Post-commit side effects are best-effort").
func (o *Orchestrator) publish(ctx context.Context, eventType, routingKey string, payload any) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Publish(ctx, eventType, routingKey, payload); err != nil {
		o.logger.Warn("event publish failed, order remains authoritative",
			zap.String("event_type", eventType), zap.String("routing_key", routingKey), zap.Error(err))
	}
}
