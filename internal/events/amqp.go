package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher mirrors ledger events to a fanout exchange so that other
// server instances (or downstream consumers) can propagate them to their
// own subscribers. Publishing is fire-and-forget: a broker hiccup loses
// the push, never the ledger write.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends the event to the exchange, keyed by group id.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		ev.GroupID, // routing key (ignored by fanout, useful for tracing)
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// Broadcaster combines the local websocket hub with an optional AMQP
// mirror behind a single publish call. The AMQP side is nil-safe.
type Broadcaster struct {
	Hub  *Hub
	AMQP *AMQPPublisher
}

// Publish delivers locally, then mirrors to the exchange if configured.
func (b *Broadcaster) Publish(ctx context.Context, ev Event) {
	b.Hub.Publish(ev)
	if b.AMQP == nil {
		return
	}
	if err := b.AMQP.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to mirror event to broker",
			"group_id", ev.GroupID, "seq", ev.Seq, "error", err)
	}
}
