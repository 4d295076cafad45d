package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// EventPublisher delivers lifecycle events to downstream consumers
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Publisher sends events to the topic exchange of its connection
type Publisher struct {
	conn   *Connection
	logger *zap.Logger
}

func NewPublisher(conn *Connection, logger *zap.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish sends event without waiting on a broker reconnect. While the link
// is down it returns ErrNotConnected.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	channel, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	routingKey := string(event.Type)
	err = channel.PublishWithContext(ctx, p.conn.Exchange(), routingKey, false, false, publishing)
	if err != nil {
		p.logger.Error("event publish failed",
			zap.String("exchange", p.conn.Exchange()),
			zap.String("routing_key", routingKey),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("exchange", p.conn.Exchange()),
		zap.String("routing_key", routingKey),
		zap.Int("size", len(body)))
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}

// NoopPublisher drops every event. It stands in when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
