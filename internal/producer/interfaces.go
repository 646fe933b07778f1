// Package producer implements the synthetic order producer of spec §4.E: a
// scheduled workload generator that samples existing customers and inventory
// and drives them through the orchestrator's CreateOrder, grounded in
// original_source's order_producer_service.rs and scheduled with
// robfig/cron/v3 the way the teacher's internal/jobs package schedules
// recurring work.
package producer

import (
	"context"

	"github.com/google/uuid"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/store"
)

// OrderCreator is the slice of the orchestrator the producer drives. Defined
// here so tests can substitute a fake rather than a full Orchestrator.
type OrderCreator interface {
	CreateOrder(ctx context.Context, dto domain.CreateOrderDTO) (*domain.Order, error)
}

// CustomerSource is the slice of store.CustomerStore the producer samples.
type CustomerSource interface {
	AnyExists(ctx context.Context) (bool, error)
	RandomCustomerID(ctx context.Context) (uuid.UUID, bool, error)
	FirstCustomerID(ctx context.Context) (uuid.UUID, bool, error)
}

// InventorySource is the slice of store.InventoryStore the producer samples.
type InventorySource interface {
	ListInventoryItems(ctx context.Context, p store.Page) ([]domain.InventoryItem, error)
	RandomItem(ctx context.Context) (*domain.InventoryItem, error)
}
