package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/config"
)

// AMQP holds a broker connection and a channel bound to one durable queue.
type AMQP struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewAMQP dials the broker and declares the queue when a URL is configured.
func NewAMQP(cfg config.AMQPConfig, logger *zap.Logger) (*AMQP, error) {
	if !cfg.Enabled() {
		logger.Info("AMQP_URL not provided; amqp event sink disabled")
		return &AMQP{}, nil
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	logger.Info("connected to amqp broker", zap.String("queue", cfg.Queue))
	return &AMQP{conn: conn, channel: ch, queue: cfg.Queue}, nil
}

// Enabled reports whether a channel is open.
func (a *AMQP) Enabled() bool {
	return a != nil && a.channel != nil
}

// Publish sends a persistent JSON message to the configured queue.
func (a *AMQP) Publish(ctx context.Context, body []byte) error {
	if !a.Enabled() {
		return ErrNotConfigured
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.channel.PublishWithContext(ctx,
		"",      // default exchange
		a.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Close shuts the channel and connection.
func (a *AMQP) Close() {
	if a == nil {
		return
	}
	if a.channel != nil {
		_ = a.channel.Close()
	}
	if a.conn != nil {
		_ = a.conn.Close()
	}
}
