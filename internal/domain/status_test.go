package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderStatus_RoundTrip(t *testing.T) {
	for s, str := range orderStatusStrings {
		got, ok := ParseOrderStatus(str)
		require.True(t, ok, "status %q should parse", str)
		require.Equal(t, s, got)
		require.Equal(t, str, s.String())
	}
}

func TestParseOrderStatus_Unknown(t *testing.T) {
	_, ok := ParseOrderStatus("not-a-status")
	require.False(t, ok)
}

func TestPaymentStatus_RoundTrip(t *testing.T) {
	for s, str := range paymentStatusStrings {
		got, ok := ParsePaymentStatus(str)
		require.True(t, ok)
		require.Equal(t, s, got)
	}
}

func TestShippingStatus_RoundTrip(t *testing.T) {
	for s, str := range shippingStatusStrings {
		got, ok := ParseShippingStatus(str)
		require.True(t, ok)
		require.Equal(t, s, got)
	}
}

func TestReservationStatus_RoundTrip(t *testing.T) {
	for s, str := range reservationStatusStrings {
		got, ok := ParseReservationStatus(str)
		require.True(t, ok)
		require.Equal(t, s, got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to processing", OrderStatusPending, OrderStatusProcessing, true},
		{"pending to out_of_stock", OrderStatusPending, OrderStatusOutOfStock, true},
		{"pending to shipped skips processing", OrderStatusPending, OrderStatusShipped, false},
		{"processing to shipped", OrderStatusProcessing, OrderStatusShipped, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"delivered to returned", OrderStatusDelivered, OrderStatusReturned, true},
		{"delivered to cancelled rejected", OrderStatusDelivered, OrderStatusCancelled, false},
		{"returned to cancelled rejected", OrderStatusReturned, OrderStatusCancelled, false},
		{"cancelled to cancelled allowed as same-status no-op", OrderStatusCancelled, OrderStatusCancelled, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"processing to cancelled", OrderStatusProcessing, OrderStatusCancelled, true},
		{"shipped to cancelled", OrderStatusShipped, OrderStatusCancelled, true},
		{"out_of_stock to cancelled", OrderStatusOutOfStock, OrderStatusCancelled, true},
		{"same status no-op", OrderStatusShipped, OrderStatusShipped, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
