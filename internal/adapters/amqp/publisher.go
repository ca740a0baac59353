// Package amqp publishes confirmation events to RabbitMQ. Delivery is
// best-effort: every error is logged and returned so callers can ignore it
// without interrupting the request flow.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"campusevents/internal/domain"
)

const (
	registrationQueue = "registration.confirmed"
	checkinQueue      = "checkin.confirmed"
)

type publisher struct {
	url    string
	logger *slog.Logger
}

// NewPublisher returns a NotificationPublisher backed by RabbitMQ. When url
// is empty a no-op publisher is returned so the service runs without a broker.
func NewPublisher(url string, logger *slog.Logger) domain.NotificationPublisher {
	if url == "" {
		logger.Info("amqp url not configured, notifications disabled")
		return &noopPublisher{}
	}
	return &publisher{url: url, logger: logger}
}

func (p *publisher) PublishRegistrationConfirmed(ctx context.Context, ev *domain.RegistrationConfirmedEvent) error {
	return p.publish(ctx, registrationQueue, ev)
}

func (p *publisher) PublishCheckInConfirmed(ctx context.Context, ev *domain.CheckInConfirmedEvent) error {
	return p.publish(ctx, checkinQueue, ev)
}

func (p *publisher) publish(ctx context.Context, queue string, payload any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("amqp dial failed", "queue", queue, "err", err)
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("amqp channel open failed", "queue", queue, "err", err)
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable declare is idempotent; messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.Warn("amqp queue declare failed", "queue", queue, "err", err)
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.Warn("amqp publish failed", "queue", queue, "err", err)
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

type noopPublisher struct{}

func (n *noopPublisher) PublishRegistrationConfirmed(ctx context.Context, ev *domain.RegistrationConfirmedEvent) error {
	return nil
}

func (n *noopPublisher) PublishCheckInConfirmed(ctx context.Context, ev *domain.CheckInConfirmedEvent) error {
	return nil
}
