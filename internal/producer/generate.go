package producer

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/synkro/logistics-core/internal/domain"
	"github.com/synkro/logistics-core/internal/errs"
	"github.com/synkro/logistics-core/internal/store"
)

// resolveCustomerID samples a random customer, falling back to the first
// customer in the system (original_source's generate_random_order tries
// get_random_customer, then get_all_customers(1,1)).
func (p *Producer) resolveCustomerID(ctx context.Context) (uuid.UUID, error) {
	if id, ok, err := p.customers.RandomCustomerID(ctx); err == nil && ok {
		return id, nil
	}
	if id, ok, err := p.customers.FirstCustomerID(ctx); err == nil && ok {
		return id, nil
	}
	return uuid.Nil, errs.NewValidationError("no customers available to generate an order for")
}

// sampleInventoryItems picks up to n items to use as order lines. It first
// tries a bulk list (mirroring get_all_items(100, 0)), falling back to
// per-draw random sampling when the list comes back empty.
func (p *Producer) sampleInventoryItems(ctx context.Context, n int) []domain.InventoryItem {
	pool, err := p.inventory.ListInventoryItems(ctx, store.Page{Page: 1, Limit: 100})
	if err == nil && len(pool) > 0 {
		items := make([]domain.InventoryItem, 0, n)
		for i := 0; i < n; i++ {
			items = append(items, pool[rand.Intn(len(pool))])
		}
		return items
	}

	items := make([]domain.InventoryItem, 0, n)
	for i := 0; i < n; i++ {
		item, err := p.inventory.RandomItem(ctx)
		if err != nil || item == nil {
			continue
		}
		items = append(items, *item)
	}
	return items
}

// generateOrder builds one synthetic CreateOrderDTO: a random customer, 1-5
// randomly sampled line items with quantity 1-3, and generated shipping and
// payment details, following original_source's generate_random_order.
func (p *Producer) generateOrder(ctx context.Context) (domain.CreateOrderDTO, error) {
	customerID, err := p.resolveCustomerID(ctx)
	if err != nil {
		return domain.CreateOrderDTO{}, err
	}

	numItems := 1 + rand.Intn(5)
	picked := p.sampleInventoryItems(ctx, numItems)
	if len(picked) == 0 {
		return domain.CreateOrderDTO{}, errs.NewValidationError("cannot create order without valid inventory items")
	}

	items := make([]domain.CreateOrderItemDTO, 0, len(picked))
	total := decimal.Zero
	for _, inv := range picked {
		qty := int32(1 + rand.Intn(3))
		items = append(items, domain.CreateOrderItemDTO{
			ProductID: inv.ID,
			SKU:       inv.SKU,
			Name:      inv.Name,
			Quantity:  qty,
			UnitPrice: inv.Price,
		})
		total = total.Add(inv.Price.Mul(decimal.NewFromInt32(qty)))
	}

	var addressLine2 *string
	if rand.Float64() < 0.3 {
		s := fmt.Sprintf("Apt %d", 1+rand.Intn(99))
		addressLine2 = &s
	}
	recipientPhone := randomPhone()
	shipping := domain.CreateShippingInfoDTO{
		AddressLine1:   randomAddressLine1(),
		AddressLine2:   addressLine2,
		City:           randomCity(),
		State:          randomState(),
		PostalCode:     randomPostalCode(),
		Country:        "US",
		RecipientName:  fmt.Sprintf("%s %s", randomFirstName(), randomLastName()),
		RecipientPhone: &recipientPhone,
		Method:         randomShippingMethod(),
		Cost:           decimal.NewFromFloat(5 + rand.Float64()*15),
	}

	transactionID := "TXN-" + randomAlphanumeric(10)
	payment := domain.CreatePaymentInfoDTO{
		PaymentMethod: randomPaymentMethod(),
		TransactionID: &transactionID,
		Currency:      "USD",
	}

	warehouseID, _ := uuid.Parse(p.cfg.WarehouseID)

	return domain.CreateOrderDTO{
		CustomerID:  customerID,
		Items:       items,
		Shipping:    shipping,
		Payment:     payment,
		Currency:    "USD",
		WarehouseID: warehouseID,
	}, nil
}
