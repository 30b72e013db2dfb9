package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

type ReviewPaymentUseCase struct {
	Leads    entity.LeadRepository
	Payments entity.PaymentRepository
	Events   EventPublisher
	Now      func() time.Time
	Logger   *slog.Logger
}

func NewReviewPaymentUseCase(leads entity.LeadRepository, payments entity.PaymentRepository, events EventPublisher, logger *slog.Logger) *ReviewPaymentUseCase {
	return &ReviewPaymentUseCase{Leads: leads, Payments: payments, Events: events, Now: time.Now, Logger: logger}
}

// Execute approves or rejects one PENDING proof. The lead status is written
// first and restored if the payment row cannot be updated afterwards.
// Anything but a PENDING proof is refused before any write.
func (uc *ReviewPaymentUseCase) Execute(ctx context.Context, input ReviewPaymentInput) (*ReviewPaymentOutput, error) {
	payment, err := uc.Payments.Get(ctx, input.UserID, input.SubmittedAt)
	if err != nil {
		return nil, err
	}
	if !payment.IsPending() {
		return nil, fmt.Errorf("%w: status is %s", entity.ErrPaymentNotPending, payment.Status)
	}

	lead, err := uc.Leads.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	event, paymentStatus, eventType := entity.EventPaymentRejected, entity.PaymentRejected, queue.EventPaymentRejected
	if input.Approve {
		event, paymentStatus, eventType = entity.EventPaymentApproved, entity.PaymentVerified, queue.EventPaymentApproved
	}

	previous := lead.Status
	next, changed, err := entity.Transition(previous, event)
	if err != nil {
		return nil, err
	}

	tx := NewTransaction(uc.Logger)
	if changed {
		tx.Add("set lead status",
			func(ctx context.Context) error { return uc.Leads.SetStatus(ctx, input.UserID, next) },
			func(ctx context.Context) error { return uc.Leads.SetStatus(ctx, input.UserID, previous) },
		)
	}
	tx.Add("set payment status",
		func(ctx context.Context) error {
			return uc.Payments.SetStatus(ctx, input.UserID, payment.SubmittedAt, paymentStatus, input.AdminID)
		},
		nil,
	)
	if err := tx.Execute(ctx); err != nil {
		return nil, err
	}

	now := nowOr(uc.Now)
	lead.Status = next
	payment.Status = paymentStatus
	payment.VerifiedBy = input.AdminID
	payment.VerifiedAt = entity.Stamp(now)

	if changed {
		metrics.RecordTransition(string(next))
	}
	metrics.RecordPaymentReview(string(paymentStatus))
	orDefault(uc.Logger).Info("payment reviewed",
		"tg_id", input.UserID,
		"submitted_at", payment.SubmittedAt,
		"status", paymentStatus,
		"admin_id", input.AdminID,
	)
	publishEvent(ctx, uc.Events, uc.Logger, eventType, input.UserID, lead.Status, now)

	return &ReviewPaymentOutput{Lead: lead, Payment: payment}, nil
}
