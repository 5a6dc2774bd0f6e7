package models

import "time"

// OrderStatusHistory is one entry of an order's append-only audit trail.
// Entries are never mutated or deleted.
type OrderStatusHistory struct {
	ID        string      `db:"id" json:"id"`
	OrderID   string      `db:"order_id" json:"orderId"`
	Status    OrderStatus `db:"status" json:"status"`
	Notes     *string     `db:"notes" json:"notes,omitempty"`
	CreatedBy string      `db:"created_by" json:"createdBy"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// NewStatusHistory builds a history entry for an order transition.
func NewStatusHistory(orderID string, status OrderStatus, notes *string, createdBy string) *OrderStatusHistory {
	return &OrderStatusHistory{
		ID:        GenerateID("his"),
		OrderID:   orderID,
		Status:    status,
		Notes:     notes,
		CreatedBy: createdBy,
		CreatedAt: Now(),
	}
}
