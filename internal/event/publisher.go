package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher publishes decision-engine events to RabbitMQ. Publishing is
// best-effort from the caller's point of view: engine operations commit
// first and events go out afterwards.
type Publisher struct {
	conn              *RabbitMQConnection
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

// NewPublisher creates a new event publisher
func NewPublisher(conn *RabbitMQConnection) *Publisher {
	return &Publisher{
		conn:            conn,
		lastPublishTime: time.Now(),
	}
}

// PublishQuoteEvent publishes a quote event to the quote_events queue
func (p *Publisher) PublishQuoteEvent(ctx context.Context, event QuoteEvent) error {
	return p.publish(ctx, QuoteEventsQueue, event)
}

// PublishClaimEvent publishes a claim event to the claim_events queue
func (p *Publisher) PublishClaimEvent(ctx context.Context, event ClaimEvent) error {
	return p.publish(ctx, ClaimEventsQueue, event)
}

// publish sends one event to a queue declared at connection time.
func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.conn.Channel.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Event published", "queue", queue)
	return nil
}
