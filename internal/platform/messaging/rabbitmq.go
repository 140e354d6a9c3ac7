package messaging

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Channel is the slice of *amqp091.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends JSON events to one durable queue.
type Publisher struct {
	ch    Channel
	queue string
	log   *zap.Logger
	mu    sync.Mutex
}

func Dial(url string) (*amqp091.Connection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return conn, nil
}

// NewPublisher opens a channel and declares the queue.
func NewPublisher(conn *amqp091.Connection, queue string, log *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return NewPublisherWithChannel(ch, queue, log), nil
}

func NewPublisherWithChannel(ch Channel, queue string, log *zap.Logger) *Publisher {
	return &Publisher{ch: ch, queue: queue, log: log}
}

// Publish marshals payload and sends it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, messageType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", messageType, err)
	}

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Type:         messageType,
		Headers: amqp091.Table{
			"message_type": "JSON",
		},
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.log.Error("publish failed", zap.String("queue", p.queue), zap.String("type", messageType), zap.Error(err))
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	p.log.Debug("message published", zap.String("queue", p.queue), zap.String("type", messageType))
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}
