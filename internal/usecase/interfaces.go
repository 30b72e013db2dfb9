package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

// PaymentNotifier tells operators that a proof is waiting for review.
type PaymentNotifier interface {
	NotifyPaymentSubmitted(ctx context.Context, lead *entity.Lead, payment *entity.Payment) error
}

// Messenger delivers a plain text message to a chat.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// publishEvent never fails the caller: the sheets already hold the truth and the
// event stream is a best-effort copy.
func publishEvent(ctx context.Context, pub EventPublisher, logger *slog.Logger, eventType string, userID int64, status entity.LeadStatus, at time.Time) {
	if pub == nil {
		return
	}
	event := queue.LeadEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		Status:     string(status),
		OccurredAt: entity.Stamp(at),
	}
	if err := pub.PublishLeadEvent(ctx, event); err != nil {
		orDefault(logger).Warn("failed to publish lead event", "type", eventType, "tg_id", userID, "error", err)
	}
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
