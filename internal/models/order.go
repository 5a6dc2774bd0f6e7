package models

import (
	"fmt"
	"math/rand"
	"time"
)

// OrderStatus is an order's current lifecycle stage.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is a legal step from s in the
// nominal lifecycle. The update path does not enforce this; arbitrary
// statuses from the enum are accepted, matching the storefront contract.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}

	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

// PaymentStatus tracks the payment side of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodCard           PaymentMethod = "CARD"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
)

// OrderSource records which channel placed the order.
type OrderSource string

const (
	OrderSourceWebsite OrderSource = "WEBSITE"
	OrderSourcePhone   OrderSource = "PHONE"
	OrderSourceAdmin   OrderSource = "ADMIN"
)

// DefaultCurrency is applied when an order omits the currency.
const DefaultCurrency = "TND"

// Order is the aggregate root binding customer identity, addresses, line
// items, monetary totals and the current status. Orders are never deleted;
// cancellation is a status.
type Order struct {
	ID                string        `db:"id" json:"id"`
	OrderNumber       string        `db:"order_number" json:"orderNumber"`
	UserID            *string       `db:"user_id" json:"userId,omitempty"`
	CustomerEmail     string        `db:"customer_email" json:"customerEmail"`
	CustomerFirstName string        `db:"customer_first_name" json:"customerFirstName"`
	CustomerLastName  string        `db:"customer_last_name" json:"customerLastName"`
	CustomerPhone     *string       `db:"customer_phone" json:"customerPhone,omitempty"`
	ShippingAddressID string        `db:"shipping_address_id" json:"shippingAddressId"`
	BillingAddressID  string        `db:"billing_address_id" json:"billingAddressId"`
	Subtotal          float64       `db:"subtotal" json:"subtotal"`
	ShippingCost      float64       `db:"shipping_cost" json:"shippingCost"`
	TaxAmount         float64       `db:"tax_amount" json:"taxAmount"`
	TotalAmount       float64       `db:"total_amount" json:"totalAmount"`
	Currency          string        `db:"currency" json:"currency"`
	Status            OrderStatus   `db:"status" json:"status"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"paymentStatus"`
	PaymentMethod     *string       `db:"payment_method" json:"paymentMethod,omitempty"`
	PaymentIntentID   *string       `db:"payment_intent_id" json:"paymentIntentId,omitempty"`
	Notes             *string       `db:"notes" json:"notes,omitempty"`
	Source            OrderSource   `db:"source" json:"source"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`
	PlacedAt          *time.Time    `db:"placed_at" json:"placedAt,omitempty"`
	ShippedAt         *time.Time    `db:"shipped_at" json:"shippedAt,omitempty"`
	DeliveredAt       *time.Time    `db:"delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt       *time.Time    `db:"cancelled_at" json:"cancelledAt,omitempty"`

	// Loaded relations, not columns.
	ShippingAddress *Address              `db:"-" json:"shippingAddress,omitempty"`
	BillingAddress  *Address              `db:"-" json:"billingAddress,omitempty"`
	Items           []*OrderItem          `db:"-" json:"orderItems,omitempty"`
	History         []*OrderStatusHistory `db:"-" json:"orderHistory,omitempty"`
}

// GenerateOrderNumber builds the human-readable number ORD-YYYYMMDD-NNNN.
// NNNN is four random digits drawn per call, not a sequence; the unique
// constraint on order_number surfaces same-day collisions as a creation
// failure.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

// ApplyStatus sets the order's status and stamps the matching lifecycle
// timestamp. CONFIRMED stamps placedAt, SHIPPED shippedAt, DELIVERED
// deliveredAt, CANCELLED cancelledAt; PENDING and PROCESSING stamp nothing.
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now

	switch status {
	case OrderStatusConfirmed:
		o.PlacedAt = &now
	case OrderStatusShipped:
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
	case OrderStatusCancelled:
		o.CancelledAt = &now
	}
}

// OrderStats is the admin dashboard rollup, computed on demand.
type OrderStats struct {
	TotalOrders     int     `json:"totalOrders"`
	InProgress      int     `json:"pendingOrders"`
	DeliveredOrders int     `json:"completedOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
}
