// Package queue_publisher publishes domain events to RabbitMQ. Errors are
// logged by callers and returned so that failures can be ignored without
// interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/coach-session-scheduler/internal/queue"
)

// PublishSessionBooked publishes a SessionBookedEvent to the durable
// "session.booked" queue. Messages are marked persistent so they survive
// broker restarts.
func PublishSessionBooked(ctx context.Context, event q.SessionBookedEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare so publisher and consumer can start in any order.
	if _, err := ch.QueueDeclare("session.booked", true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", "session.booked", false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
