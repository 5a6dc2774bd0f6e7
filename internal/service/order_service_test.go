package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoparts-tn/orders-api/internal/models"
)

func strPtr(s string) *string { return &s }

func checkoutData() *CreateOrderData {
	return &CreateOrderData{
		UserID:            strPtr("usr-42"),
		CustomerEmail:     "sami@example.tn",
		CustomerFirstName: "Sami",
		CustomerLastName:  "Ben Ali",
		CustomerPhone:     strPtr("+216 20 123 456"),
		ShippingAddress: &models.AddressInput{
			FirstName:    "Sami",
			LastName:     "Ben Ali",
			AddressLine1: "12 Rue de Carthage",
			City:         "Tunis",
			PostalCode:   "1001",
		},
		Items: []models.OrderItemInput{
			{ArticleID: 1045108, ArticleNo: "OC 90", Name: "Oil Filter", Supplier: "MAHLE", Price: 25.5, Quantity: 2},
			{ArticleID: 2230017, ArticleNo: "13046072232", Name: "Brake Pad Set", Supplier: "ATE", Price: 149.0, Quantity: 1},
		},
		Subtotal:     200.0,
		ShippingCost: 8.0,
		TaxAmount:    39.6,
		TotalAmount:  247.6,
	}
}

func TestBuildAggregateDefaults(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	agg := buildAggregate(checkoutData(), now)

	order := agg.order
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.OrderSourceWebsite, order.Source)
	assert.Equal(t, "TND", order.Currency)
	assert.Equal(t, now, order.CreatedAt)
	require.NotNil(t, order.PlacedAt)
	assert.Equal(t, now, *order.PlacedAt)
	assert.Regexp(t, `^ORD-20250314-\d{4}$`, order.OrderNumber)

	assert.Nil(t, order.ShippedAt)
	assert.Nil(t, order.DeliveredAt)
	assert.Nil(t, order.CancelledAt)
}

func TestBuildAggregateBillingFallsBackToShipping(t *testing.T) {
	agg := buildAggregate(checkoutData(), time.Now().UTC())

	assert.Nil(t, agg.billing)
	assert.Equal(t, agg.shipping.ID, agg.order.ShippingAddressID)
	assert.Equal(t, agg.shipping.ID, agg.order.BillingAddressID)
	assert.Equal(t, models.AddressTypeShipping, agg.shipping.Type)
	assert.Equal(t, "Tunisia", agg.shipping.Country)
}

func TestBuildAggregateDistinctBillingAddress(t *testing.T) {
	data := checkoutData()
	data.BillingAddress = &models.AddressInput{
		FirstName:    "Sami",
		LastName:     "Ben Ali",
		AddressLine1: "5 Avenue Habib Bourguiba",
		City:         "Sfax",
		PostalCode:   "3000",
		Country:      "France",
	}

	agg := buildAggregate(data, time.Now().UTC())

	require.NotNil(t, agg.billing)
	assert.Equal(t, models.AddressTypeBilling, agg.billing.Type)
	assert.Equal(t, "France", agg.billing.Country)
	assert.Equal(t, agg.billing.ID, agg.order.BillingAddressID)
	assert.NotEqual(t, agg.shipping.ID, agg.order.BillingAddressID)
}

func TestBuildAggregateItemSnapshots(t *testing.T) {
	agg := buildAggregate(checkoutData(), time.Now().UTC())

	require.Len(t, agg.items, 2)
	for _, item := range agg.items {
		assert.Equal(t, agg.order.ID, item.OrderID)
		assert.NotEmpty(t, item.ID)
	}
	assert.Equal(t, "Oil Filter", agg.items[0].Name)
	assert.Equal(t, 51.0, agg.items[0].LineTotal())

	var sum float64
	for _, item := range agg.items {
		sum += item.LineTotal()
	}
	assert.InDelta(t, agg.order.Subtotal, sum, 0.001)
	assert.InDelta(t, agg.order.Subtotal+agg.order.ShippingCost+agg.order.TaxAmount, agg.order.TotalAmount, 0.001)
}

func TestBuildAggregateInitialHistory(t *testing.T) {
	agg := buildAggregate(checkoutData(), time.Now().UTC())

	h := agg.history
	assert.Equal(t, agg.order.ID, h.OrderID)
	assert.Equal(t, models.OrderStatusPending, h.Status)
	require.NotNil(t, h.Notes)
	assert.Equal(t, "Order created", *h.Notes)
	assert.Equal(t, "usr-42", h.CreatedBy)
}

func TestBuildAggregateGuestActor(t *testing.T) {
	data := checkoutData()
	data.UserID = nil
	agg := buildAggregate(data, time.Now().UTC())

	assert.Equal(t, "guest", agg.history.CreatedBy)
	assert.Nil(t, agg.order.UserID)
	assert.Nil(t, agg.shipping.UserID)
}

func TestBuildAggregateKeepsExplicitCurrencyAndSource(t *testing.T) {
	data := checkoutData()
	data.Currency = "EUR"
	data.Source = models.OrderSourcePhone
	agg := buildAggregate(data, time.Now().UTC())

	assert.Equal(t, "EUR", agg.order.Currency)
	assert.Equal(t, models.OrderSourcePhone, agg.order.Source)
}
