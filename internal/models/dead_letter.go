package models

import "time"

// DeadLetterStatus is the processing state of a dead-lettered event.
type DeadLetterStatus string

const (
	DeadLetterStatusPending   DeadLetterStatus = "pending"
	DeadLetterStatusRetrying  DeadLetterStatus = "retrying"
	DeadLetterStatusResolved  DeadLetterStatus = "resolved"
	DeadLetterStatusDiscarded DeadLetterStatus = "discarded"
)

// DeadLetterMessage is an outbox message parked after exhausting its
// publication retries.
type DeadLetterMessage struct {
	ID              int64            `db:"id" json:"id"`
	OutboxMessageID int64            `db:"outbox_message_id" json:"outbox_message_id"`
	AggregateType   string           `db:"aggregate_type" json:"aggregate_type"`
	AggregateID     string           `db:"aggregate_id" json:"aggregate_id"`
	EventType       string           `db:"event_type" json:"event_type"`
	Payload         []byte           `db:"payload" json:"payload"`
	FailureReason   string           `db:"failure_reason" json:"failure_reason"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	RetryCount      int              `db:"retry_count" json:"retry_count"`
	LastRetryAt     *time.Time       `db:"last_retry_at" json:"last_retry_at,omitempty"`
	ResolvedAt      *time.Time       `db:"resolved_at" json:"resolved_at,omitempty"`
	Status          DeadLetterStatus `db:"status" json:"status"`
}

// NewDeadLetterMessage parks a failed outbox message.
func NewDeadLetterMessage(msg *OutboxMessage, reason string) *DeadLetterMessage {
	return &DeadLetterMessage{
		OutboxMessageID: msg.ID,
		AggregateType:   msg.AggregateType,
		AggregateID:     msg.AggregateID,
		EventType:       msg.EventType,
		Payload:         msg.Payload,
		FailureReason:   reason,
		CreatedAt:       Now(),
		Status:          DeadLetterStatusPending,
	}
}
