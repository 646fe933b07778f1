// Package orchestrator implements the order transaction orchestrator of
// spec §4.D: atomic order creation under concurrent inventory contention,
// status transitions with compensating inventory restoration, and
// cancellation with reservation release. It coordinates the persistence
// gateway (internal/store), the event bus (internal/eventbus), and the
// inventory RPC client (internal/inventoryrpc), following the
// inventory-then-payment-then-outbox sequencing and otel/zap instrumentation
// of the teacher's services/order/internal/service/service.go, generalized
// to the full state machine and row-lock algorithm spec.md adds.
package orchestrator

import (
	"context"

	"github.com/synkro/logistics-core/internal/inventoryrpc"
)

// InventoryClient is the slice of the §4.C RPC client the orchestrator
// drives. Defined here (rather than importing *inventoryrpc.Client
// directly) so tests can substitute a fake, mirroring the teacher's
// service.InventoryClient seam (services/order/internal/service/
// interfaces.go).
type InventoryClient interface {
	CheckAndReserveStock(ctx context.Context, req inventoryrpc.CheckAndReserveStockRequest) (*inventoryrpc.CheckAndReserveStockResponse, error)
	ReleaseReservedStock(ctx context.Context, req inventoryrpc.ReleaseStockRequest) (*inventoryrpc.ReleaseStockResponse, error)
	CommitReservation(ctx context.Context, req inventoryrpc.CommitReservationRequest) (*inventoryrpc.CommitReservationResponse, error)
}

var _ InventoryClient = (*inventoryrpc.Client)(nil)
