package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// BatchEvent is published whenever a batch changes status or progress.
type BatchEvent struct {
	BatchID    string      `json:"batch_id"`
	Status     BatchStatus `json:"status"`
	Progress   float64     `json:"progress"`
	TotalFiles int         `json:"total_files"`
	Error      string      `json:"error,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type ProgressPublisher interface {
	Publish(ctx context.Context, event BatchEvent) error
	Close() error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewAMQPPublisher connects to RabbitMQ and declares the topic exchange batch
// events are routed through as batch.<id>.
func NewAMQPPublisher(url, exchange string) (ProgressPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Printf("✅ Publishing batch updates to exchange '%s'\n", exchange)
	return &amqpPublisher{conn: conn, exchange: exchange}, nil
}

// Publish implements ProgressPublisher.
func (p *amqpPublisher) Publish(ctx context.Context, event BatchEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode batch event: %w", err)
	}

	return ch.Publish(
		p.exchange,
		BatchRoutingKey(event.BatchID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.Timestamp,
			Body:        body,
		},
	)
}

// Close implements ProgressPublisher.
func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}

func BatchRoutingKey(batchID string) string {
	return fmt.Sprintf("batch.%s", batchID)
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() ProgressPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event BatchEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
