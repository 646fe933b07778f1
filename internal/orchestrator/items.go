package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/errs"
)

// UpdateOrderItem implements spec §4.D's update_order_item: quantity must
// be >= 1 (ValidationError otherwise); total_price is recomputed by the
// store from the new quantity.
func (o *Orchestrator) UpdateOrderItem(ctx context.Context, itemID uuid.UUID, quantity int32) (*domain.OrderItem, error) {
	if quantity < 1 {
		return nil, errs.NewValidationError("quantity must be >= 1")
	}
	item, err := o.orders.UpdateItemQuantity(ctx, itemID, quantity)
	if err != nil {
		return nil, errs.NewDatabaseError("update order item", err)
	}
	if item == nil {
		return nil, errs.NewNotFoundError("order_item", itemID)
	}
	return item, nil
}

// DeleteOrderItem implements spec §4.D's delete_order_item: NotFound if the
// row did not exist.
func (o *Orchestrator) DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error {
	deleted, err := o.orders.DeleteItem(ctx, itemID)
	if err != nil {
		return errs.NewDatabaseError("delete order item", err)
	}
	if !deleted {
		return errs.NewNotFoundError("order_item", itemID)
	}
	return nil
}
