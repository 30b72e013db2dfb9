package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

// AdminNotifier forwards a new payment proof to every admin with review buttons.
type AdminNotifier struct {
	Gateway Gateway
	Admins  *usecase.Admins
	Logger  *slog.Logger
}

func NewAdminNotifier(gateway Gateway, admins *usecase.Admins, logger *slog.Logger) *AdminNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminNotifier{Gateway: gateway, Admins: admins, Logger: logger}
}

// NotifyPaymentSubmitted keeps going when one admin cannot be reached and
// returns the joined failures.
func (n *AdminNotifier) NotifyPaymentSubmitted(ctx context.Context, lead *entity.Lead, payment *entity.Payment) error {
	var errs []error
	notice := paymentNotice(lead, payment)
	kb := reviewKeyboard(payment.UserID, payment.SubmittedAt)

	for _, adminID := range n.Admins.IDs() {
		if err := n.Gateway.SendText(ctx, adminID, notice, kb); err != nil {
			n.Logger.Error("failed to notify admin", "admin_id", adminID, "error", err)
			errs = append(errs, fmt.Errorf("admin %d: %w", adminID, err))
			continue
		}

		var err error
		if payment.Proof.Kind == entity.ProofDocument {
			err = n.Gateway.SendDocument(ctx, adminID, payment.Proof.FileID)
		} else {
			err = n.Gateway.SendPhoto(ctx, adminID, payment.Proof.FileID)
		}
		if err != nil {
			n.Logger.Error("failed to forward payment proof", "admin_id", adminID, "error", err)
			errs = append(errs, fmt.Errorf("admin %d proof: %w", adminID, err))
		}
	}
	return errors.Join(errs...)
}
