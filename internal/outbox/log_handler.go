package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/pkg/logger"
)

// LogHandler consumes outbox messages by logging them. It stands in for
// the Kafka publisher when no broker is configured, so events still drain
// from the outbox table.
type LogHandler struct {
	logger logger.Logger
}

// NewLogHandler creates a new LogHandler
func NewLogHandler(logger logger.Logger) *LogHandler {
	return &LogHandler{
		logger: logger,
	}
}

// HandleMessage handles the outbox message by logging it
func (h *LogHandler) HandleMessage(ctx context.Context, message *models.OutboxMessage) error {
	var event models.OutboxEvent

	if err := json.Unmarshal(message.Payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal outbox message: %w", err)
	}

	h.logger.Info("Handling outbox message",
		"messageID", message.ID,
		"eventType", message.EventType,
		"aggregateID", message.AggregateID,
		"eventID", event.EventID,
		"occurredAt", event.OccurredAt)

	return nil
}
