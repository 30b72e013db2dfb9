package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventLeadRegistered   = "lead.registered"
	EventTrialBooked      = "trial.booked"
	EventTrialCompleted   = "trial.completed"
	EventPaymentSubmitted = "payment.submitted"
	EventPaymentApproved  = "payment.approved"
	EventPaymentRejected  = "payment.rejected"
)

// LeadEvent is published after a lifecycle step has been written to the sheets.
type LeadEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"tg_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the part of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// NoopProducer is used when no broker is configured.
type NoopProducer struct{}

func (NoopProducer) PublishLeadEvent(context.Context, LeadEvent) error { return nil }
