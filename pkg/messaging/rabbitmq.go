package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ publishes JSON messages to a durable topic exchange
type RabbitMQ struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitMQ dials the broker and declares the exchange
func NewRabbitMQ(url, exchange string) (*RabbitMQ, error) {
	r := &RabbitMQ{url: url, exchange: exchange}

	if err := r.connect(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		r.exchange,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", r.exchange, err)
	}

	r.conn = conn
	r.ch = ch
	return nil
}

// Publish marshals payload and publishes it as a persistent message
func (r *RabbitMQ) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() || r.ch == nil || r.ch.IsClosed() {
		r.closeLocked()
		if err := r.connect(); err != nil {
			return err
		}
	}

	err = r.ch.PublishWithContext(ctx,
		r.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", routingKey, err)
	}

	return nil
}

// Connected reports whether the broker connection is currently open
func (r *RabbitMQ) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.conn != nil && !r.conn.IsClosed()
}

// Close closes the channel and connection
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closeLocked()
}

func (r *RabbitMQ) closeLocked() error {
	var err error
	if r.ch != nil && !r.ch.IsClosed() {
		err = r.ch.Close()
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if cerr := r.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	r.ch = nil
	r.conn = nil
	return err
}
