package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"

	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/pkg/logger"
)

// OrderEventsHandler consumes order lifecycle events from Kafka.
type OrderEventsHandler struct {
	logger logger.Logger
}

// NewOrderEventsHandler creates a new OrderEventsHandler
func NewOrderEventsHandler(logger logger.Logger) *OrderEventsHandler {
	return &OrderEventsHandler{
		logger: logger,
	}
}

// HandleMessage handles incoming order events from Kafka messages
func (h *OrderEventsHandler) HandleMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var event models.OutboxEvent

	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("failed to unmarshal message", "error", err)
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	h.logger.Info("Handling order event",
		"eventType", event.EventType,
		"eventId", event.EventID,
		"aggregateId", event.AggregateID,
		"occurredAt", event.OccurredAt,
	)

	switch event.EventType {
	case models.EventOrderCreated:
		return h.handleOrderCreated(event)
	case models.EventOrderStatusChanged:
		return h.handleOrderStatusChanged(event)
	case models.EventPaymentStatusChanged:
		return h.handlePaymentStatusChanged(event)
	default:
		h.logger.Warn("unknown event type", "eventType", event.EventType)
		return nil
	}
}

// handleOrderCreated handles the order_created event. This is where a
// confirmation email or a fulfillment notification would hook in.
func (h *OrderEventsHandler) handleOrderCreated(event models.OutboxEvent) error {
	data, _ := event.Data.(map[string]interface{})
	orderNumber, _ := data["order_number"].(string)

	h.logger.Info("Processing order created event",
		"orderID", event.AggregateID,
		"orderNumber", orderNumber,
		"eventID", event.EventID)

	return nil
}

// handleOrderStatusChanged handles the order_status_changed event
func (h *OrderEventsHandler) handleOrderStatusChanged(event models.OutboxEvent) error {
	data, ok := event.Data.(map[string]interface{})
	if !ok {
		h.logger.Error("Invalid event data format", "eventID", event.EventID)
		return fmt.Errorf("invalid event data format")
	}

	oldStatus, _ := data["old_status"].(string)
	newStatus, _ := data["new_status"].(string)

	h.logger.Info("Order status changed",
		"orderID", event.AggregateID,
		"oldStatus", oldStatus,
		"newStatus", newStatus)

	return nil
}

// handlePaymentStatusChanged handles the payment_status_changed event
func (h *OrderEventsHandler) handlePaymentStatusChanged(event models.OutboxEvent) error {
	data, ok := event.Data.(map[string]interface{})
	if !ok {
		h.logger.Error("Invalid event data format", "eventID", event.EventID)
		return fmt.Errorf("invalid event data format")
	}

	oldStatus, _ := data["old_payment_status"].(string)
	newStatus, _ := data["new_payment_status"].(string)

	h.logger.Info("Payment status changed",
		"orderID", event.AggregateID,
		"oldStatus", oldStatus,
		"newStatus", newStatus)

	return nil
}
