package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
)

const TaskEventsQueue = "task_events"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TaskEvent is the wire form of a task lifecycle event consumed by the
// auditor.
type TaskEvent struct {
	TaskID     int       `json:"task_id"`
	UserID     int       `json:"user_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits task lifecycle events. A nil *Publisher is valid and drops
// events, so the service runs unchanged when RabbitMQ is not configured.
type Publisher struct {
	conn *amqp.Connection
}

func NewPublisher(conn *amqp.Connection) *Publisher {
	if conn == nil {
		return nil
	}
	return &Publisher{conn: conn}
}

// PublishTaskEvent publishes a persistent event to the task_events queue.
func (p *Publisher) PublishTaskEvent(ctx context.Context, event TaskEvent) error {
	if p == nil {
		return nil
	}

	ch, err := CreateChannel(p.conn)
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, TaskEventsQueue); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		"",              // exchange
		TaskEventsQueue, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return err
	}

	if m := observability.GlobalMetrics; m != nil {
		m.QueueMessagesPublished.WithLabelValues(TaskEventsQueue).Inc()
	}
	return nil
}
