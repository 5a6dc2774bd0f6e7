package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		assert.Regexp(t, `^ORD-20250314-\d{4}$`, GenerateOrderNumber(now))
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}

	assert.False(t, OrderStatus("SUSPENDED").Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("pending").Valid())
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusProcessing))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))

	// CANCELLED is reachable from every non-terminal status.
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped,
	} {
		assert.True(t, s.CanTransitionTo(OrderStatusCancelled), s)
	}

	// Terminal statuses go nowhere.
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusConfirmed))

	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusConfirmed))
}

func TestApplyStatusStampsTimestamps(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		status OrderStatus
		field  func(o *Order) *time.Time
	}{
		{OrderStatusConfirmed, func(o *Order) *time.Time { return o.PlacedAt }},
		{OrderStatusShipped, func(o *Order) *time.Time { return o.ShippedAt }},
		{OrderStatusDelivered, func(o *Order) *time.Time { return o.DeliveredAt }},
		{OrderStatusCancelled, func(o *Order) *time.Time { return o.CancelledAt }},
	}

	for _, tc := range cases {
		order := &Order{Status: OrderStatusPending}
		order.ApplyStatus(tc.status, now)

		assert.Equal(t, tc.status, order.Status)
		assert.Equal(t, now, order.UpdatedAt)
		require.NotNil(t, tc.field(order), tc.status)
		assert.Equal(t, now, *tc.field(order), tc.status)
	}
}

func TestApplyStatusProcessingStampsNothing(t *testing.T) {
	now := time.Now().UTC()
	order := &Order{Status: OrderStatusConfirmed}
	order.ApplyStatus(OrderStatusProcessing, now)

	assert.Equal(t, OrderStatusProcessing, order.Status)
	assert.Nil(t, order.PlacedAt)
	assert.Nil(t, order.ShippedAt)
	assert.Nil(t, order.DeliveredAt)
	assert.Nil(t, order.CancelledAt)
}

func TestPaymentStatusValid(t *testing.T) {
	for _, s := range []PaymentStatus{
		PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, PaymentStatus("PAID").Valid())
}

func TestGenerateIDPrefix(t *testing.T) {
	id := GenerateID("ord")
	assert.Regexp(t, `^ord-[0-9a-f]{8}$`, id)
	assert.NotEqual(t, id, GenerateID("ord"))
}
