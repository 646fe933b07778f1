package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/eventbus"
)

// Publisher publishes envelopes, persistently, on a durable topic exchange
// (spec §4.B "publish(event_type, routing_key, payload)").
type Publisher struct {
	conn     *ConnectionManager
	exchange string
	logger   *zap.Logger

	ch *amqp.Channel
}

func NewPublisher(ctx context.Context, conn *ConnectionManager, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel(ctx)
	if err != nil {
		return nil, fmt.Errorf("amqp: open publisher channel: %w", err)
	}
	if err := declareTopology(ch, exchange); err != nil {
		return nil, fmt.Errorf("amqp: declare topology: %w", err)
	}
	return &Publisher{conn: conn, exchange: exchange, logger: logger, ch: ch}, nil
}

func (p *Publisher) Publish(ctx context.Context, eventType, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("amqp: marshal payload: %w", err)
	}
	env := eventbus.NewEnvelope(eventType, body)
	envBody, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("amqp: marshal envelope: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID.String(),
		Timestamp:    env.OccurredAt,
		Body:         envBody,
	})
	if err != nil {
		p.logger.Error("amqp publish failed", zap.String("event_type", eventType),
			zap.String("routing_key", routingKey), zap.Error(err))
		return fmt.Errorf("amqp: publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.ch == nil {
		return nil
	}
	return p.ch.Close()
}
