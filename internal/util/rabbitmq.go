package util

import (
	"fmt"

	"safeprofile/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	AuditExchange = "audit_exchange"
	AuditQueue    = "audit_queue"
	AuditKey      = "audit"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQClient(cfg *config.Config) (*RabbitMQClient, error) {
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("rabbitmq url not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(AuditExchange, "direct", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare audit exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(AuditQueue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare audit queue: %w", err)
	}

	if err := channel.QueueBind(queue.Name, AuditKey, AuditExchange, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind audit queue: %w", err)
	}

	return &RabbitMQClient{conn: conn, channel: channel}, nil
}

// GetChannel returns the underlying channel, nil when disconnected.
func (c *RabbitMQClient) GetChannel() *amqp.Channel {
	if c == nil {
		return nil
	}
	return c.channel
}

// Publish sends a persistent message to the audit exchange.
func (c *RabbitMQClient) Publish(body []byte) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("rabbitmq not connected")
	}
	return c.channel.Publish(AuditExchange, AuditKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close closes the channel and connection.
func (c *RabbitMQClient) Close() {
	if c == nil {
		return
	}
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
