package orchestrator

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/errs"
	"github.com/synkro/logistics-core/internal/inventoryrpc"
	"github.com/synkro/logistics-core/internal/store"
)

// fakeTx is a no-op store.Tx handle; the fake stores below ignore handle
// identity and apply writes directly, so Commit/Rollback only need to
// record what happened.
type fakeTx struct {
	rolledBack bool
	committed  bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

// fakeOrderStore is a hand-written in-memory double for store.OrderStore,
// mirroring the teacher's table-driven fakes in
// services/order/internal/service/order_test.go since mockery cannot be
// run in this environment.
type fakeOrderStore struct {
	orders       map[uuid.UUID]domain.Order
	items        map[uuid.UUID][]domain.OrderItem
	inventory    map[uuid.UUID]int32 // ProductID -> available quantity
	outOfStockID uuid.UUID           // if set, Decrement fails for this product id

	lockErr    error
	decrements []uuid.UUID
	restores   []uuid.UUID
	beginErr   error
	updateErr  error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders:    map[uuid.UUID]domain.Order{},
		items:     map[uuid.UUID][]domain.OrderItem{},
		inventory: map[uuid.UUID]int32{},
	}
}

func (f *fakeOrderStore) List(ctx context.Context, p store.Page) ([]domain.Order, error) { return nil, nil }
func (f *fakeOrderStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, p store.Page) ([]domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderStore) Search(ctx context.Context, pattern string, p store.Page) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (f *fakeOrderStore) Update(ctx context.Context, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.Notes != nil {
		o.Notes = patch.Notes
	}
	if patch.TrackingNumber != nil {
		o.TrackingNumber = patch.TrackingNumber
	}
	f.orders[id] = o
	return &o, nil
}

func (f *fakeOrderStore) Count(ctx context.Context) (int64, error) { return int64(len(f.orders)), nil }
func (f *fakeOrderStore) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	return 0, nil
}
func (f *fakeOrderStore) SumItemTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeOrderStore) Begin(ctx context.Context) (store.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{}, nil
}

func (f *fakeOrderStore) LockInventoryRowsAscending(ctx context.Context, tx store.Tx, ids []uuid.UUID) error {
	return f.lockErr
}

func (f *fakeOrderStore) CreateOrderInTx(ctx context.Context, tx store.Tx, order domain.Order) error {
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderStore) CreateItemInTx(ctx context.Context, tx store.Tx, item domain.OrderItem) error {
	f.items[item.OrderID] = append(f.items[item.OrderID], item)
	return nil
}

func (f *fakeOrderStore) CreatePaymentInTx(ctx context.Context, tx store.Tx, payment domain.PaymentInfo) error {
	return nil
}

func (f *fakeOrderStore) CreateShippingInTx(ctx context.Context, tx store.Tx, shipping domain.ShippingInfo) error {
	return nil
}

func (f *fakeOrderStore) DecrementInventoryInTx(ctx context.Context, tx store.Tx, inventoryID uuid.UUID, qty int32) (bool, error) {
	f.decrements = append(f.decrements, inventoryID)
	if inventoryID == f.outOfStockID {
		return false, nil
	}
	avail, ok := f.inventory[inventoryID]
	if !ok || avail < qty {
		return false, nil
	}
	f.inventory[inventoryID] = avail - qty
	return true, nil
}

func (f *fakeOrderStore) RestoreInventoryInTx(ctx context.Context, tx store.Tx, inventoryID uuid.UUID, qty int32) error {
	f.restores = append(f.restores, inventoryID)
	f.inventory[inventoryID] += qty
	return nil
}

func (f *fakeOrderStore) UpdateInTx(ctx context.Context, tx store.Tx, id uuid.UUID, patch domain.UpdateOrderDTO) (*domain.Order, error) {
	return f.Update(ctx, id, patch)
}

func (f *fakeOrderStore) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderStore) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int32) (*domain.OrderItem, error) {
	for orderID, items := range f.items {
		for i, it := range items {
			if it.ID == itemID {
				it.Quantity = quantity
				it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt32(quantity))
				f.items[orderID][i] = it
				return &it, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeOrderStore) DeleteItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	for orderID, items := range f.items {
		for i, it := range items {
			if it.ID == itemID {
				f.items[orderID] = append(items[:i], items[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

// fakeReservationStore is a hand-written in-memory double for
// store.ReservationStore.
type fakeReservationStore struct {
	byOrder map[uuid.UUID][]domain.InventoryReservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{byOrder: map[uuid.UUID][]domain.InventoryReservation{}}
}

func (f *fakeReservationStore) Create(ctx context.Context, r domain.InventoryReservation) error {
	f.byOrder[r.OrderID] = append(f.byOrder[r.OrderID], r)
	return nil
}

func (f *fakeReservationStore) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.ReservationStatus) error {
	reservations := f.byOrder[orderID]
	for i := range reservations {
		reservations[i].Status = status
	}
	return nil
}

func (f *fakeReservationStore) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.InventoryReservation, error) {
	return f.byOrder[orderID], nil
}

// fakeInventoryClient is a hand-written double for the orchestrator's
// InventoryClient seam.
type fakeInventoryClient struct {
	reserveResp *inventoryrpc.CheckAndReserveStockResponse
	reserveErr  error
	released    []string
	committed   []string
}

func (f *fakeInventoryClient) CheckAndReserveStock(ctx context.Context, req inventoryrpc.CheckAndReserveStockRequest) (*inventoryrpc.CheckAndReserveStockResponse, error) {
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	if f.reserveResp != nil {
		return f.reserveResp, nil
	}
	return &inventoryrpc.CheckAndReserveStockResponse{Success: true, ReservationID: "res-1"}, nil
}

func (f *fakeInventoryClient) ReleaseReservedStock(ctx context.Context, req inventoryrpc.ReleaseStockRequest) (*inventoryrpc.ReleaseStockResponse, error) {
	f.released = append(f.released, req.ReservationID)
	return &inventoryrpc.ReleaseStockResponse{Success: true}, nil
}

func (f *fakeInventoryClient) CommitReservation(ctx context.Context, req inventoryrpc.CommitReservationRequest) (*inventoryrpc.CommitReservationResponse, error) {
	f.committed = append(f.committed, req.ReservationID)
	return &inventoryrpc.CommitReservationResponse{Success: true}, nil
}

func testDTO(productID uuid.UUID) domain.CreateOrderDTO {
	return domain.CreateOrderDTO{
		CustomerID: uuid.New(),
		Items: []domain.CreateOrderItemDTO{
			{ProductID: productID, SKU: "SKU-1", Name: "Widget", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		},
		Shipping: domain.CreateShippingInfoDTO{
			AddressLine1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62704",
			Country: "US", RecipientName: "Jane Doe", Method: "standard", Cost: decimal.NewFromInt(5),
		},
		Payment:     domain.CreatePaymentInfoDTO{PaymentMethod: "card", Currency: "USD"},
		WarehouseID: uuid.New(),
	}
}

func newTestOrchestrator(orders *fakeOrderStore, reservations *fakeReservationStore, rpc InventoryClient) *Orchestrator {
	return New(orders, orders, reservations, rpc, nil, zap.NewNop())
}

func TestCreateOrder_Success(t *testing.T) {
	productID := uuid.New()
	orders := newFakeOrderStore()
	orders.inventory[productID] = 10
	reservations := newFakeReservationStore()
	rpc := &fakeInventoryClient{}
	o := newTestOrchestrator(orders, reservations, rpc)

	order, err := o.CreateOrder(context.Background(), testDTO(productID))
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(20)))
	require.Equal(t, int32(8), orders.inventory[productID])
	require.Len(t, rpc.committed, 1)
}

func TestCreateOrder_ValidationError_NoItems(t *testing.T) {
	orders := newFakeOrderStore()
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	dto := testDTO(uuid.New())
	dto.Items = nil
	_, err := o.CreateOrder(context.Background(), dto)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateOrder_ValidationError_BadQuantity(t *testing.T) {
	orders := newFakeOrderStore()
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	dto := testDTO(uuid.New())
	dto.Items[0].Quantity = 0
	_, err := o.CreateOrder(context.Background(), dto)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreateOrder_PreReserveBadRequest(t *testing.T) {
	productID := uuid.New()
	orders := newFakeOrderStore()
	orders.inventory[productID] = 10
	rpc := &fakeInventoryClient{reserveResp: &inventoryrpc.CheckAndReserveStockResponse{Success: false, Message: "no stock"}}
	o := newTestOrchestrator(orders, newFakeReservationStore(), rpc)

	_, err := o.CreateOrder(context.Background(), testDTO(productID))
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrBadRequest)
	// the db transaction must never have been attempted
	require.Empty(t, orders.orders)
}

func TestCreateOrder_TransportFailureContinuesWithoutReservation(t *testing.T) {
	productID := uuid.New()
	orders := newFakeOrderStore()
	orders.inventory[productID] = 10
	rpc := &fakeInventoryClient{reserveErr: context.DeadlineExceeded}
	o := newTestOrchestrator(orders, newFakeReservationStore(), rpc)

	order, err := o.CreateOrder(context.Background(), testDTO(productID))
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.Empty(t, rpc.committed)
}

func TestCreateOrder_OutOfStock(t *testing.T) {
	productID := uuid.New()
	orders := newFakeOrderStore()
	orders.outOfStockID = productID
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	order, err := o.CreateOrder(context.Background(), testDTO(productID))
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusOutOfStock, order.Status)
	require.NotNil(t, order.Notes)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	orders := newFakeOrderStore()
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	_, err := o.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusProcessing, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateStatus_NoOp(t *testing.T) {
	orderID := uuid.New()
	orders := newFakeOrderStore()
	orders.orders[orderID] = domain.Order{ID: orderID, Status: domain.OrderStatusShipped}
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	updated, err := o.UpdateStatus(context.Background(), orderID, domain.OrderStatusShipped, nil)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusShipped, updated.Status)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	orderID := uuid.New()
	orders := newFakeOrderStore()
	orders.orders[orderID] = domain.Order{ID: orderID, Status: domain.OrderStatusPending}
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	_, err := o.UpdateStatus(context.Background(), orderID, domain.OrderStatusShipped, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateStatus_CancelRestoresInventoryAndReleasesReservation(t *testing.T) {
	orderID := uuid.New()
	productID := uuid.New()

	orders := newFakeOrderStore()
	orders.orders[orderID] = domain.Order{ID: orderID, Status: domain.OrderStatusProcessing}
	orders.items[orderID] = []domain.OrderItem{
		{ID: uuid.New(), OrderID: orderID, ProductID: productID, SKU: "SKU-1", Quantity: 3},
	}
	orders.inventory[productID] = 5

	reservations := newFakeReservationStore()
	reservations.byOrder[orderID] = []domain.InventoryReservation{
		{ID: uuid.New(), OrderID: orderID, ProductID: productID, Status: domain.ReservationStatusConfirmed},
	}
	rpc := &fakeInventoryClient{}
	o := newTestOrchestrator(orders, reservations, rpc)

	updated, err := o.UpdateStatus(context.Background(), orderID, domain.OrderStatusCancelled, nil)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCancelled, updated.Status)
	require.Equal(t, int32(8), orders.inventory[productID])
	require.Len(t, rpc.released, 1)
	require.Equal(t, domain.ReservationStatusReleased, reservations.byOrder[orderID][0].Status)
}

func TestUpdateOrderItem_ValidationError(t *testing.T) {
	orders := newFakeOrderStore()
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	_, err := o.UpdateOrderItem(context.Background(), uuid.New(), 0)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateOrderItem_NotFound(t *testing.T) {
	orders := newFakeOrderStore()
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	_, err := o.UpdateOrderItem(context.Background(), uuid.New(), 3)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateOrderItem_Success(t *testing.T) {
	orderID := uuid.New()
	itemID := uuid.New()
	orders := newFakeOrderStore()
	orders.items[orderID] = []domain.OrderItem{
		{ID: itemID, OrderID: orderID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
	}
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	item, err := o.UpdateOrderItem(context.Background(), itemID, 4)
	require.NoError(t, err)
	require.Equal(t, int32(4), item.Quantity)
	require.True(t, item.TotalPrice.Equal(decimal.NewFromInt(40)))
}

func TestDeleteOrderItem_NotFound(t *testing.T) {
	orders := newFakeOrderStore()
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	err := o.DeleteOrderItem(context.Background(), uuid.New())
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteOrderItem_Success(t *testing.T) {
	orderID := uuid.New()
	itemID := uuid.New()
	orders := newFakeOrderStore()
	orders.items[orderID] = []domain.OrderItem{{ID: itemID, OrderID: orderID}}
	o := newTestOrchestrator(orders, newFakeReservationStore(), &fakeInventoryClient{})

	err := o.DeleteOrderItem(context.Background(), itemID)
	require.NoError(t, err)
	require.Empty(t, orders.items[orderID])
}
