// Package queue is the RabbitMQ transport for translation work items.
// Delivery is at-least-once; consumers must tolerate redelivery.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/josego85/pdf-content-search/pkg/log"
)

// Producer publishes work items to the durable translation queue.
type Producer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

func NewProducer(rabbitURL, queueName string) (*Producer, error) {
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

	log.Info("Connected to RabbitMQ, queue: %s", queueName)

	return &Producer{
		conn:      conn,
		channel:   channel,
		queueName: queueName,
	}, nil
}

func connectWithRetry(url string, maxRetries int, delay time.Duration) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}

		log.Warn("Failed to connect to RabbitMQ (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, err)
}

// Enqueue publishes a work item as a persistent message.
func (p *Producer) Enqueue(ctx context.Context, item WorkItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal work item: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish work item: %w", err)
	}

	log.Debug("Enqueued translation work for %s page %d (%s)", item.DocumentID, item.Page, item.TargetLanguage)
	return nil
}

func (p *Producer) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
