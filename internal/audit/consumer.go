package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/observability"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/queue"
	"github.com/satyanandshreyash/Albearoti-Solutions-Inc-Assignment/internal/utils"
)

const maxRetries = 3

func republishWithRetry(ch *amqp.Channel, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	headers := amqp.Table{}
	if msg.Headers != nil {
		headers = msg.Headers
	}
	headers["x-retry-count"] = retryCount

	return ch.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
		},
	)
}

// StartConsumer drains task lifecycle events from the task_events queue into
// the audit table. Messages are acked manually; transient insert failures
// are requeued with a bounded retry count.
func StartConsumer(conn *amqp.Connection, db *sql.DB, repo AuditRepositoryInterface, id int) {
	ch, err := conn.Channel()
	if err != nil {
		logrus.Fatalf("Auditor %d failed to open channel: %v", id, err)
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logrus.Fatalf("Auditor %d failed to set QoS: %v", id, err)
	}

	msgs, err := ch.Consume(
		queue.TaskEventsQueue,
		"",    // consumer tag
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logrus.Fatalf("Auditor %d failed to start consuming messages: %v", id, err)
	}

	logrus.Infof("Auditor %d started", id)

	for msg := range msgs {
		if m := observability.GlobalMetrics; m != nil {
			m.QueueMessagesConsumed.WithLabelValues(queue.TaskEventsQueue).Inc()
		}

		var event queue.TaskEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			logrus.WithError(err).Error("Invalid task event payload")
			msg.Nack(false, false)
			continue
		}

		retryCount := int32(0)
		if msg.Headers != nil {
			if count, ok := msg.Headers["x-retry-count"].(int32); ok {
				retryCount = count
			}
		}

		logrus.WithFields(logrus.Fields{
			"task_id": event.TaskID,
			"user_id": event.UserID,
			"action":  event.Action,
			"retry":   retryCount,
		}).Infof("Auditor %d recording task event", id)

		record := &Record{
			TaskID:     event.TaskID,
			UserID:     event.UserID,
			Action:     event.Action,
			OccurredAt: event.OccurredAt,
		}

		if err := utils.WithTransaction(db, func(tx *sql.Tx) error {
			return repo.Insert(tx, record)
		}); err != nil {
			logrus.WithError(err).Error("Failed to insert audit record")

			if retryCount >= maxRetries {
				logrus.WithField("task_id", event.TaskID).Error("Dropping task event after max retries")
				msg.Nack(false, false)
				continue
			}

			if err := republishWithRetry(ch, &msg, retryCount+1); err != nil {
				logrus.WithError(err).Error("Failed to republish task event")
				msg.Nack(false, false)
				continue
			}

			if m := observability.GlobalMetrics; m != nil {
				m.QueueMessagesPublished.WithLabelValues(queue.TaskEventsQueue).Inc()
			}
			msg.Ack(false)
			continue
		}

		if m := observability.GlobalMetrics; m != nil {
			m.AuditRecordsTotal.WithLabelValues(event.Action).Inc()
		}
		msg.Ack(false)
	}
}
