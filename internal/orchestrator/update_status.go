package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/errs"
	"github.com/synkro/logistics-core/internal/eventbus"
	"github.com/synkro/logistics-core/internal/inventoryrpc"
)

// UpdateStatus implements spec §4.D's update-status operation: load,
// no-op on current==target, cancellation compensation in a transaction for
// the Cancelled target, a plain update otherwise, then best-effort
// publication.
func (o *Orchestrator) UpdateStatus(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus, notes *string) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.UpdateStatus", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	current, err := o.orders.FindByID(ctx, orderID)
	if err != nil {
		err = errs.NewDatabaseError("find order", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if current == nil {
		err := errs.NewNotFoundError("order", orderID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// (b) current == target: unchanged, no event published.
	if current.Status == target {
		return current, nil
	}

	if !domain.CanTransition(current.Status, target) {
		err := errs.NewValidationError(fmt.Sprintf("cannot transition order from %s to %s", current.Status, target))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var updated *domain.Order
	if target == domain.OrderStatusCancelled {
		updated, err = o.cancelWithCompensation(ctx, orderID, notes)
	} else {
		patch := domain.UpdateOrderDTO{Status: &target, Notes: notes}
		updated, err = o.orders.Update(ctx, orderID, patch)
	}
	if err != nil {
		err = errs.NewDatabaseError("update order status", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if updated == nil {
		err := errs.NewNotFoundError("order", orderID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// (d) publish OrderStatusChanged on order.status.{lower(status)}.
	o.publish(ctx, eventbus.EventOrderStatusChanged, eventbus.RoutingOrderStatusPrefix+strings.ToLower(updated.Status.String()), map[string]any{
		"order_id":   updated.ID.String(),
		"status":     updated.Status.String(),
		"prev_status": current.Status.String(),
	})

	if target == domain.OrderStatusCancelled {
		// (e) also publish OrderCancelled and release the remote reservation.
		o.publish(ctx, eventbus.EventOrderCancelled, eventbus.RoutingOrderCancelled, map[string]any{
			"order_id": updated.ID.String(),
		})
		o.releaseReservation(ctx, orderID)
	}

	return updated, nil
}

// cancelWithCompensation runs the cancellation compensation of spec §4.D
// step (c): lock the order's inventory rows in ascending id order, restore
// each line item's quantity unconditionally, then update the order row —
// all inside one transaction. The guard in UpdateStatus (current not in
// {Delivered, Returned, Cancelled}) makes this idempotent per transition
// (spec §9).
func (o *Orchestrator) cancelWithCompensation(ctx context.Context, orderID uuid.UUID, notes *string) (*domain.Order, error) {
	items, err := o.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

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

	ids := distinctProductIDs(items)
	if err := o.orders.LockInventoryRowsAscending(ctx, tx, ids); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := o.orders.RestoreInventoryInTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	cancelled := domain.OrderStatusCancelled
	updated, err := o.orders.UpdateInTx(ctx, tx, orderID, domain.UpdateOrderDTO{Status: &cancelled, Notes: notes})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return updated, nil
}

// releaseReservation marks the local reservation mirror Released and asks
// the remote inventory service to release its hold. Both are best-effort:
// a failure here is logged and never reopens the cancellation (spec §4.D
// step (e) "All publish/release failures are logged and non-fatal").
func (o *Orchestrator) releaseReservation(ctx context.Context, orderID uuid.UUID) {
	reservations, err := o.reservations.ListByOrder(ctx, orderID)
	if err != nil {
		o.logger.Warn("failed to list reservations for release", zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}

	if o.inventoryRPC != nil {
		for _, res := range reservations {
			_, err := o.inventoryRPC.ReleaseReservedStock(ctx, inventoryrpc.ReleaseStockRequest{
				ReservationID: res.ID.String(),
				OrderID:       orderID.String(),
				Reason:        "order cancelled",
			})
			if err != nil {
				o.logger.Warn("release_reserved_stock failed, non-fatal",
					zap.String("order_id", orderID.String()), zap.Error(err))
			}
		}
	}

	if err := o.reservations.UpdateStatus(ctx, orderID, domain.ReservationStatusReleased); err != nil {
		o.logger.Warn("failed to mark reservation released", zap.String("order_id", orderID.String()), zap.Error(err))
	}
}
