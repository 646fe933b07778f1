package amqp

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// declareTopology declares the durable topic exchange the main queues bind
// to. Dead lettering itself is scoped per-queue by declareWorkQueue (spec
// §4.B "Dead lettering": "for a queue Q bound to exchange X with routing key
// R, the client also declares exchange X.dlx and queue Q.dlq bound by R; the
// main queue Q is then (re)declared with x-dead-letter-exchange = X.dlx and
// x-dead-letter-routing-key = R"), grounded in
// original_source/logistics-engine/src/mq/dlq.rs.
func declareTopology(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
}

// declareWorkQueue declares a durable queue bound to routingKey on exchange,
// first declaring the exchange's dead-letter exchange (exchange + ".dlx") and
// that queue's own DLQ bound to it by routingKey, so rejected or discarded
// deliveries land on a queue-scoped DLQ.
func declareWorkQueue(ch *amqp.Channel, exchange, queue, routingKey string) error {
	dlx := exchange + ".dlx"
	dlq := queue + ".dlq"

	if err := ch.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(dlq, routingKey, dlx, false, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": routingKey,
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return err
	}
	return ch.QueueBind(queue, routingKey, exchange, false, nil)
}
