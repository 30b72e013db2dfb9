package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// EmailNotifier mails a copy of every payment proof notice to the operators.
// The proof file itself stays in Telegram; the mail only points at it.
type EmailNotifier struct {
	dialer   Dialer
	from     string
	to       []string
	location *time.Location
	logger   *slog.Logger
}

func NewEmailNotifier(cfg SMTPConfig, to []string, location *time.Location, logger *slog.Logger) *EmailNotifier {
	return NewEmailNotifierWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, to, location, logger)
}

func NewEmailNotifierWithDialer(dialer Dialer, from string, to []string, location *time.Location, logger *slog.Logger) *EmailNotifier {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailNotifier{
		dialer:   dialer,
		from:     from,
		to:       to,
		location: location,
		logger:   logger,
	}
}

func (n *EmailNotifier) NotifyPaymentSubmitted(ctx context.Context, lead *entity.Lead, payment *entity.Payment) error {
	if len(n.to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := PaymentEmailData{
		Name:        lead.Name,
		Username:    lead.Username,
		Phone:       lead.Phone,
		UserID:      payment.UserID,
		Amount:      strconv.FormatInt(payment.Amount, 10),
		ProofKind:   string(payment.Proof.Kind),
		SubmittedAt: payment.SubmittedAt.In(n.location).Format("2006-01-02 15:04"),
	}

	var body bytes.Buffer
	if err := paymentTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render payment email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", fmt.Sprintf("Payment proof from %s", lead.DisplayName()))
	m.SetBody("text/plain", body.String())

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send payment email: %w", err)
	}

	n.logger.Info("payment email sent", "tg_id", payment.UserID, "recipients", len(n.to))
	return nil
}
