package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/josego85/pdf-content-search/pkg/log"
)

// Handler processes one delivered work item. A non-nil error rejects the
// delivery so the broker's retry/dead-letter policy takes over.
type Handler func(ctx context.Context, item WorkItem) error

// Consumer pulls work items from the translation queue one at a time.
type Consumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

func NewConsumer(rabbitURL, queueName string) (*Consumer, error) {
	conn, err := connectWithRetry(rabbitURL, 10, 5*time.Second)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// One unacked message per consumer: a worker finishes the job in hand
	// before the broker hands it another.
	if err := channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		conn:      conn,
		channel:   channel,
		queueName: queueName,
	}, nil
}

// Start consumes until the context is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Info("Waiting for translation work on queue %s", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, msg, handler)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery, handler Handler) {
	var item WorkItem
	if err := json.Unmarshal(msg.Body, &item); err != nil {
		log.Error("Discarding malformed work item: %v", err)
		// Malformed payloads can never succeed; do not requeue.
		_ = msg.Nack(false, false)
		return
	}

	if err := handler(ctx, item); err != nil {
		log.Error("Failed to process %s page %d: %v", item.DocumentID, item.Page, err)
		// Reject without requeue; the broker's dead-letter policy decides
		// what happens next.
		_ = msg.Nack(false, false)
		return
	}

	_ = msg.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
