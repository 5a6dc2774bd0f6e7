package models

import (
	"encoding/json"
	"time"
)

// Outbox event types published for order lifecycle changes.
const (
	EventOrderCreated         = "order_created"
	EventOrderStatusChanged   = "order_status_changed"
	EventPaymentStatusChanged = "payment_status_changed"
)

// OutboxStatus is the processing state of an outbox row.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusCompleted  OutboxStatus = "completed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

// OutboxMessage is a row of the transactional outbox, written in the same
// transaction as the order change it describes.
type OutboxMessage struct {
	ID                 int64        `db:"id" json:"id"`
	AggregateType      string       `db:"aggregate_type" json:"aggregate_type"`
	AggregateID        string       `db:"aggregate_id" json:"aggregate_id"`
	EventType          string       `db:"event_type" json:"event_type"`
	Payload            []byte       `db:"payload" json:"payload"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	ProcessedAt        *time.Time   `db:"processed_at" json:"processed_at,omitempty"`
	ProcessingAttempts int          `db:"processing_attempts" json:"processing_attempts"`
	LastError          *string      `db:"last_error" json:"last_error,omitempty"`
	Status             OutboxStatus `db:"status" json:"status"`
}

// OutboxEvent is the payload envelope carried by an outbox message.
type OutboxEvent struct {
	EventType   string      `json:"event_type"`
	EventID     string      `json:"event_id"`
	AggregateID string      `json:"aggregate_id"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Data        interface{} `json:"data"`
}

func newOrderEvent(eventType, orderID string, data interface{}) (*OutboxMessage, error) {
	event := OutboxEvent{
		EventType:   eventType,
		EventID:     GenerateID("evt"),
		AggregateID: orderID,
		OccurredAt:  Now(),
		Data:        data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     Now(),
		Status:        OutboxStatusPending,
	}, nil
}

// NewOrderCreatedEvent builds the outbox row announcing a new order.
func NewOrderCreatedEvent(order *Order) (*OutboxMessage, error) {
	return newOrderEvent(EventOrderCreated, order.ID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"total_amount": order.TotalAmount,
		"currency":     order.Currency,
	})
}

// NewOrderStatusChangedEvent builds the outbox row for a status transition.
func NewOrderStatusChangedEvent(order *Order, oldStatus OrderStatus) (*OutboxMessage, error) {
	return newOrderEvent(EventOrderStatusChanged, order.ID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"old_status":   oldStatus,
		"new_status":   order.Status,
	})
}

// NewPaymentStatusChangedEvent builds the outbox row for a payment update.
func NewPaymentStatusChangedEvent(order *Order, oldStatus PaymentStatus) (*OutboxMessage, error) {
	return newOrderEvent(EventPaymentStatusChanged, order.ID, map[string]interface{}{
		"order_id":           order.ID,
		"order_number":       order.OrderNumber,
		"old_payment_status": oldStatus,
		"new_payment_status": order.PaymentStatus,
	})
}
