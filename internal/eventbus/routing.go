package eventbus

// Routing keys on the order_events topic exchange (spec §6 "Message bus").
const (
	RoutingOrderCreated   = "order.created"
	RoutingOrderCancelled = "order.cancelled"
	// RoutingOrderStatusPrefix is the prefix of the per-status routing key;
	// appending the lowercase status gives e.g. "order.status.shipped"
	// (spec §6).
	RoutingOrderStatusPrefix = "order.status."

	RoutingInventoryReserved = "inventory.reserved"
	RoutingInventoryReleased = "inventory.released"
	RoutingShipmentCreated   = "shipment.created"
	RoutingShipmentStatus    = "shipment.status."
	RoutingPaymentProcessed  = "payment.processed"
	RoutingPaymentFailed     = "payment.failed"
)

// Event type tags carried in the envelope (spec §4.D).
const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
)
