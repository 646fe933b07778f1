package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/synkro/logistics-core/internal/eventbus"
)

// Consumer binds durable queues to the exchange and dispatches deliveries to
// registered handlers, one goroutine per queue (spec §4.B "Consumer
// dispatch", §5 "a worker per queue").
type Consumer struct {
	conn         *ConnectionManager
	exchange     string
	maxRedeliver int
	logger       *zap.Logger
}

func NewConsumer(conn *ConnectionManager, exchange string, maxRedeliver int, logger *zap.Logger) *Consumer {
	return &Consumer{conn: conn, exchange: exchange, maxRedeliver: maxRedeliver, logger: logger}
}

func (c *Consumer) RegisterHandler(ctx context.Context, queue, routingKey string, handler eventbus.Handler) error {
	ch, err := c.conn.Channel(ctx)
	if err != nil {
		return fmt.Errorf("amqp: open consumer channel: %w", err)
	}
	if err := declareTopology(ch, c.exchange); err != nil {
		return fmt.Errorf("amqp: declare topology: %w", err)
	}
	if err := declareWorkQueue(ch, c.exchange, queue, routingKey); err != nil {
		return fmt.Errorf("amqp: declare queue %s: %w", queue, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("amqp: set qos: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp: consume %s: %w", queue, err)
	}

	go c.dispatch(ctx, ch, queue, deliveries, handler)
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, ch *amqp.Channel, queue string, deliveries <-chan amqp.Delivery, handler eventbus.Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(ctx, d, queue, handler)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery, queue string, handler eventbus.Handler) {
	var env eventbus.Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		// Malformed messages must not block a queue: ack and drop rather
		// than route to the DLQ (spec §4.B "on decode failure, ack and
		// drop").
		c.logger.Error("amqp: malformed envelope, acking and dropping", zap.String("queue", queue), zap.Error(err))
		_ = d.Ack(false)
		return
	}

	result, err := handler(ctx, env)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	if deliveryCount(d) >= c.maxRedeliver {
		c.logger.Error("amqp: handler failed, redelivery limit reached, routing to dlq",
			zap.String("queue", queue), zap.String("event_type", env.EventType), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	switch result {
	case eventbus.NackRequeue:
		c.logger.Warn("amqp: handler failed, requeuing",
			zap.String("queue", queue), zap.String("event_type", env.EventType), zap.Error(err))
		_ = d.Nack(false, true)
	case eventbus.NackDiscard:
		c.logger.Error("amqp: handler failed, discarding to dlq",
			zap.String("queue", queue), zap.String("event_type", env.EventType), zap.Error(err))
		_ = d.Nack(false, false)
	default: // AckAfterLog
		c.logger.Error("amqp: handler failed, acking to avoid head-of-line blocking",
			zap.String("queue", queue), zap.String("event_type", env.EventType), zap.Error(err))
		_ = d.Ack(false)
	}
}

// deliveryCount reads the x-death header count RabbitMQ attaches to messages
// that have already been dead-lettered and requeued once.
func deliveryCount(d amqp.Delivery) int {
	xDeath, ok := d.Headers["x-death"].([]any)
	if !ok || len(xDeath) == 0 {
		return 0
	}
	entry, ok := xDeath[0].(amqp.Table)
	if !ok {
		return 0
	}
	switch v := entry["count"].(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	default:
		return 0
	}
}

func (c *Consumer) Close() error {
	return nil
}
