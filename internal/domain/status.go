package domain

// OrderStatus is the order lifecycle state. The storage/bus form is a
// lowercase string; the RPC form is a compact small integer.
type OrderStatus int

const (
	OrderStatusUnspecified OrderStatus = iota
	OrderStatusPending
	OrderStatusProcessing
	OrderStatusShipped
	OrderStatusDelivered
	OrderStatusCancelled
	OrderStatusReturned
	OrderStatusOutOfStock
)

var orderStatusStrings = map[OrderStatus]string{
	OrderStatusPending:    "pending",
	OrderStatusProcessing: "processing",
	OrderStatusShipped:    "shipped",
	OrderStatusDelivered:  "delivered",
	OrderStatusCancelled:  "cancelled",
	OrderStatusReturned:   "returned",
	OrderStatusOutOfStock: "out_of_stock",
}

var orderStatusFromString = invert(orderStatusStrings)

func (s OrderStatus) String() string {
	if str, ok := orderStatusStrings[s]; ok {
		return str
	}
	return ""
}

// ParseOrderStatus maps the wire/storage string back to the enum. Round-trip
// with String() is a tested invariant (spec §8 invariant 4).
func ParseOrderStatus(s string) (OrderStatus, bool) {
	v, ok := orderStatusFromString[s]
	return v, ok
}

func invert(m map[OrderStatus]string) map[string]OrderStatus {
	out := make(map[string]OrderStatus, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// orderTransitions enumerates the edges of the state diagram in spec.md
// §4.D. Cancellation (any non-terminal state -> Cancelled) is handled
// separately since it applies uniformly rather than per-state.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:    {OrderStatusProcessing: true, OrderStatusOutOfStock: true},
	OrderStatusProcessing: {OrderStatusShipped: true},
	OrderStatusShipped:    {OrderStatusDelivered: true},
	OrderStatusDelivered:  {OrderStatusReturned: true},
}

// terminalForCancellation are the statuses from which cancellation is
// rejected (spec.md §4.D: "Any state → Cancelled is allowed except from
// Delivered, Returned, or Cancelled").
var terminalForCancellation = map[OrderStatus]bool{
	OrderStatusDelivered: true,
	OrderStatusReturned:  true,
	OrderStatusCancelled: true,
}

// CanTransition reports whether moving from `from` to `to` is a legal order
// status transition per the state machine in spec.md §4.D.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	if to == OrderStatusCancelled {
		return !terminalForCancellation[from]
	}
	return orderTransitions[from][to]
}

// PaymentStatus mirrors OrderStatus's bidirectional string/int discipline.
type PaymentStatus int

const (
	PaymentStatusUnspecified PaymentStatus = iota
	PaymentStatusPending
	PaymentStatusProcessing
	PaymentStatusSucceeded
	PaymentStatusFailed
	PaymentStatusRefunded
	PaymentStatusPartiallyRefunded
	PaymentStatusCancelled
)

var paymentStatusStrings = map[PaymentStatus]string{
	PaymentStatusPending:           "pending",
	PaymentStatusProcessing:        "processing",
	PaymentStatusSucceeded:         "succeeded",
	PaymentStatusFailed:            "failed",
	PaymentStatusRefunded:          "refunded",
	PaymentStatusPartiallyRefunded: "partially_refunded",
	PaymentStatusCancelled:         "cancelled",
}

var paymentStatusFromString = func() map[string]PaymentStatus {
	out := make(map[string]PaymentStatus, len(paymentStatusStrings))
	for k, v := range paymentStatusStrings {
		out[v] = k
	}
	return out
}()

func (s PaymentStatus) String() string { return paymentStatusStrings[s] }

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	v, ok := paymentStatusFromString[s]
	return v, ok
}

// ShippingStatus mirrors OrderStatus's bidirectional string/int discipline.
type ShippingStatus int

const (
	ShippingStatusUnspecified ShippingStatus = iota
	ShippingStatusPending
	ShippingStatusProcessing
	ShippingStatusShipped
	ShippingStatusInTransit
	ShippingStatusOutForDelivery
	ShippingStatusDelivered
	ShippingStatusFailed
	ShippingStatusReturned
	ShippingStatusCancelled
)

var shippingStatusStrings = map[ShippingStatus]string{
	ShippingStatusPending:        "pending",
	ShippingStatusProcessing:     "processing",
	ShippingStatusShipped:        "shipped",
	ShippingStatusInTransit:      "in_transit",
	ShippingStatusOutForDelivery: "out_for_delivery",
	ShippingStatusDelivered:      "delivered",
	ShippingStatusFailed:         "failed",
	ShippingStatusReturned:       "returned",
	ShippingStatusCancelled:      "cancelled",
}

var shippingStatusFromString = func() map[string]ShippingStatus {
	out := make(map[string]ShippingStatus, len(shippingStatusStrings))
	for k, v := range shippingStatusStrings {
		out[v] = k
	}
	return out
}()

func (s ShippingStatus) String() string { return shippingStatusStrings[s] }

func ParseShippingStatus(s string) (ShippingStatus, bool) {
	v, ok := shippingStatusFromString[s]
	return v, ok
}

// ReservationStatus mirrors OrderStatus's bidirectional string/int discipline.
type ReservationStatus int

const (
	ReservationStatusUnspecified ReservationStatus = iota
	ReservationStatusPending
	ReservationStatusConfirmed
	ReservationStatusRejected
	ReservationStatusReleased
)

var reservationStatusStrings = map[ReservationStatus]string{
	ReservationStatusPending:   "pending",
	ReservationStatusConfirmed: "confirmed",
	ReservationStatusRejected:  "rejected",
	ReservationStatusReleased:  "released",
}

var reservationStatusFromString = func() map[string]ReservationStatus {
	out := make(map[string]ReservationStatus, len(reservationStatusStrings))
	for k, v := range reservationStatusStrings {
		out[v] = k
	}
	return out
}()

func (s ReservationStatus) String() string { return reservationStatusStrings[s] }

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	v, ok := reservationStatusFromString[s]
	return v, ok
}
