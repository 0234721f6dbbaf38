package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"noq-clinic-queue/internal/domain/entity"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// RabbitMQPublisher publishes patient notifications to a durable queue
// consumed by the external mailer.
type RabbitMQPublisher struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	cb        *gobreaker.CircuitBreaker
	log       *logrus.Logger
}

func NewRabbitMQPublisher(amqpURL, queueName string, log *logrus.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	// Declare the queue (idempotent)
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &RabbitMQPublisher{
		conn:      conn,
		ch:        ch,
		queueName: queueName,
		cb:        NewCircuitBreaker("RabbitMQ-Notifications", log),
		log:       log,
	}, nil
}

// PublishPatientNotification sends one persistent JSON message. When the
// breaker is open the call fails fast with gobreaker.ErrOpenState.
func (p *RabbitMQPublisher) PublishPatientNotification(ctx context.Context, notification entity.PatientNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return ctx.Err()
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.ch.PublishWithContext(
			ctx,
			"",          // exchange (default)
			p.queueName, // routing key == queue name
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    notification.RequestedAt,
				Type:         "patient.notification",
				Body:         body,
			},
		)
	})
	if err != nil {
		return fmt.Errorf("publish notification for patient %d: %w", notification.PatientID, err)
	}

	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NewCircuitBreaker opens after 3 consecutive failures and probes again after 30s.
func NewCircuitBreaker(name string, log *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}
