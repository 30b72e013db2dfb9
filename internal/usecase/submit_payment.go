package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

type SubmitPaymentUseCase struct {
	Leads     entity.LeadRepository
	Payments  entity.PaymentRepository
	Notifiers []PaymentNotifier
	Events    EventPublisher
	Amount    int64
	Logger    *slog.Logger
}

func NewSubmitPaymentUseCase(leads entity.LeadRepository, payments entity.PaymentRepository, events EventPublisher, amount int64, logger *slog.Logger, notifiers ...PaymentNotifier) *SubmitPaymentUseCase {
	return &SubmitPaymentUseCase{
		Leads:     leads,
		Payments:  payments,
		Notifiers: notifiers,
		Events:    events,
		Amount:    amount,
		Logger:    logger,
	}
}

// Execute stores a new PENDING proof, moves the lead to PAYMENT_SENT and tells
// the operators. Notification failures are logged, the proof stays recorded.
func (uc *SubmitPaymentUseCase) Execute(ctx context.Context, input SubmitPaymentInput) (*SubmitPaymentOutput, error) {
	if errs := ValidateProof(input.Proof); len(errs) > 0 {
		return nil, errs
	}

	lead, err := uc.Leads.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	next, changed, err := entity.Transition(lead.Status, entity.EventProofSubmitted)
	if err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		UserID: input.UserID,
		Amount: uc.Amount,
		Proof:  input.Proof,
	}

	// The status goes first: a PENDING row next to a lead that never reached
	// PAYMENT_SENT could not be approved.
	previous := lead.Status
	tx := NewTransaction(uc.Logger)
	if changed {
		tx.Add("set lead status",
			func(ctx context.Context) error { return uc.Leads.SetStatus(ctx, input.UserID, next) },
			func(ctx context.Context) error { return uc.Leads.SetStatus(ctx, input.UserID, previous) },
		)
	}
	tx.Add("create payment",
		func(ctx context.Context) error {
			_, err := uc.Payments.Create(ctx, payment)
			return err
		},
		nil,
	)
	if err := tx.Execute(ctx); err != nil {
		return nil, err
	}

	if changed {
		lead.Status = next
		metrics.RecordTransition(string(next))
	}

	logger := orDefault(uc.Logger)
	logger.Info("payment proof submitted", "tg_id", input.UserID, "submitted_at", payment.SubmittedAt, "kind", payment.Proof.Kind)

	for _, n := range uc.Notifiers {
		if err := n.NotifyPaymentSubmitted(ctx, lead, payment); err != nil {
			metrics.RecordIntegrationError("payment_notifier")
			logger.Warn("failed to notify about payment proof", "tg_id", input.UserID, "error", err)
		}
	}

	publishEvent(ctx, uc.Events, uc.Logger, queue.EventPaymentSubmitted, input.UserID, lead.Status, payment.SubmittedAt)
	return &SubmitPaymentOutput{Lead: lead, Payment: payment}, nil
}
