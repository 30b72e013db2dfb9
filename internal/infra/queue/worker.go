package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventSink stores consumed events. The Events sheet journal implements it.
type EventSink interface {
	Record(ctx context.Context, id, eventType string, userID int64, status string, at time.Time) error
}

// Consumer is the part of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Sink    EventSink
	Logger  *slog.Logger
}

func NewWorker(ch Consumer, sink EventSink, logger *slog.Logger) *Worker {
	return &Worker{Channel: ch, Sink: sink, Logger: logger}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.Info("event journal worker started", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("event journal worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks journaled events. Malformed bodies and sink failures are
// rejected without requeue so they end up in the dead letter queue.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || event.ID == "" {
		w.Logger.Error("malformed lead event", "message_id", d.MessageId, "error", err)
		d.Nack(false, false)
		return
	}

	if err := w.Sink.Record(ctx, event.ID, event.Type, event.UserID, event.Status, event.OccurredAt); err != nil {
		w.Logger.Error("failed to journal lead event", "event_id", event.ID, "type", event.Type, "error", err)
		d.Nack(false, false)
		return
	}

	w.Logger.Debug("lead event journaled", "event_id", event.ID, "type", event.Type, "tg_id", event.UserID)
	d.Ack(false)
}
