// Package eventbus defines the event envelope and the Publisher/Consumer
// contracts of spec §4.B, independent of the AMQP transport in eventbus/amqp.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the envelope schema version (spec §4.B "initially 1.0").
const SchemaVersion = "1.0"

// Envelope is the uniform message wrapper placed on the bus: a unique id,
// an event-type tag, a monotonic UTC timestamp, a schema version, and the
// payload (spec §4.B "Message envelope").
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Version    string          `json:"version"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload with a fresh id and the current schema
// version. The event bus itself assigns the id; callers never fabricate one.
func NewEnvelope(eventType string, payload json.RawMessage) Envelope {
	return Envelope{
		ID:         uuid.New(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Version:    SchemaVersion,
		Payload:    payload,
	}
}

// HandlerResult tells the dispatcher whether to ack or nack a delivery
// after a handler returns an error (spec §4.B "Consumer dispatch").
type HandlerResult int

const (
	// AckAfterLog is the default policy: ack even on handler failure, after
	// logging, to avoid head-of-line blocking (spec §4.B "the system
	// prefers availability to redelivery").
	AckAfterLog HandlerResult = iota
	// NackRequeue asks the broker to redeliver the message.
	NackRequeue
	// NackDiscard rejects the message without requeue, routing it to the
	// dead-letter queue.
	NackDiscard
)

// Handler processes one decoded envelope. The returned HandlerResult is
// consulted only when err != nil; a nil error always acks.
type Handler func(ctx context.Context, env Envelope) (HandlerResult, error)

// Publisher emits persistent messages on the configured topic exchange
// (spec §4.B "publish(event_type, routing_key, payload)").
type Publisher interface {
	Publish(ctx context.Context, eventType, routingKey string, payload any) error
	Close() error
}

// Consumer binds a durable queue to the exchange and dispatches deliveries
// to a handler (spec §4.B "register_handler").
type Consumer interface {
	RegisterHandler(ctx context.Context, queue, routingKey string, handler Handler) error
	Close() error
}
