package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/maker-accounts/internal/queue"
)

// EventPublisher announces account lifecycle events to the upload backend.
type EventPublisher interface {
	PublishAccountDeleted(ctx context.Context, ev queue.AccountDeletedEvent) error
}

// NopPublisher drops every event. It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) PublishAccountDeleted(context.Context, queue.AccountDeletedEvent) error {
	return nil
}

// AMQPPublisher publishes events to RabbitMQ, dialing per publish. Account
// deletion is rare enough that a long-lived channel is not worth its
// reconnect handling.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishAccountDeleted publishes ev to the durable account.deleted queue as
// a persistent JSON message.
func (p *AMQPPublisher) PublishAccountDeleted(ctx context.Context, ev queue.AccountDeletedEvent) error {
	return p.publishJSON(ctx, queue.AccountDeletedQueue, ev)
}

func (p *AMQPPublisher) publishJSON(ctx context.Context, queueName string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // store on disk
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
