package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/usecase"
	"github.com/xavierca1/lead-engine/pkg/logger"
)

// Settings are the operator-provided values the conversation needs.
type Settings struct {
	GroupID       int64
	CardNumber    string
	PaymentAmount int64
	Location      *time.Location
}

// HeaderCounter reports how many columns the Leads header has.
type HeaderCounter interface {
	HeaderWidth(ctx context.Context) (int, error)
}

// Deps holds the collaborators of the bot. All fields are required.
type Deps struct {
	Gateway  Gateway
	Sessions dialog.Store
	Admins   *usecase.Admins
	Leads    entity.LeadRepository
	Trials   entity.TrialRepository
	Payments entity.PaymentRepository
	Health   HeaderCounter

	Register      *usecase.RegisterLeadUseCase
	BookTrial     *usecase.BookTrialUseCase
	CompleteTrial *usecase.CompleteTrialUseCase
	SubmitPayment *usecase.SubmitPaymentUseCase
	ReviewPayment *usecase.ReviewPaymentUseCase
	Broadcast     *usecase.BroadcastUseCase
	JoinRequest   *usecase.JoinRequestUseCase
}

// Bot routes updates to commands, menu actions and dialog steps.
type Bot struct {
	Deps
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
	startedAt time.Time

	background sync.WaitGroup
}

func New(deps Deps, settings Settings, logger *slog.Logger) *Bot {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		Deps:      deps,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
		startedAt: time.Now(),
	}
}

// log returns the per-update logger the dispatcher put into ctx.
func (b *Bot) log(ctx context.Context) *slog.Logger {
	return logger.FromOr(ctx, b.logger)
}

// Wait blocks until background jobs started by admins (broadcasts) finish.
func (b *Bot) Wait() {
	b.background.Wait()
}

func (b *Bot) Handle(ctx context.Context, u Update) error {
	var err error
	switch u.Kind {
	case UpdateJoinRequest:
		return b.handleJoinRequest(ctx, u)
	case UpdateCallback:
		err = b.handleCallback(ctx, u)
	default:
		err = b.handleMessage(ctx, u)
	}
	if err == nil {
		return nil
	}
	return b.replyError(ctx, u.ChatID, err)
}

func (b *Bot) handleMessage(ctx context.Context, u Update) error {
	if name, args, ok := u.Command(); ok {
		return b.handleCommand(ctx, u, name, args)
	}

	s, ok, err := b.Sessions.Get(ctx, u.UserID)
	if err != nil {
		return err
	}
	if ok && s.Active() {
		in, valid := messageInput(u)
		if !valid {
			return b.suspend(ctx, u.ChatID, s.Step, dialog.ReasonUnexpectedInput)
		}
		return b.continueDialog(ctx, u, s, in)
	}

	return b.send(ctx, u.ChatID, msgMainMenu, mainMenuKeyboard)
}

func messageInput(u Update) (dialog.Input, bool) {
	switch {
	case u.Attachment != nil:
		return dialog.Input{Kind: dialog.InputAttachment, FileID: u.Attachment.FileID, FileKind: string(u.Attachment.Kind)}, true
	case u.ContactPhone != "":
		return dialog.Input{Kind: dialog.InputContact, Phone: u.ContactPhone}, true
	case u.Text != "":
		return dialog.Input{Kind: dialog.InputText, Text: u.Text}, true
	}
	return dialog.Input{}, false
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, kb Keyboard) error {
	return b.Gateway.SendText(ctx, chatID, text, kb)
}

// replyError turns a failed action into the reply the user should see. Only
// errors the user cannot act upon are returned for logging.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) error {
	var verrs usecase.ValidationErrors
	var text string
	switch {
	case errors.Is(err, usecase.ErrPermissionDenied):
		text = msgAccessDenied
	case errors.Is(err, entity.ErrLeadNotFound):
		text = msgRegisterFirst
	case errors.Is(err, entity.ErrPaymentNotPending):
		text = msgReviewedAlready
	case errors.Is(err, entity.ErrPaymentNotFound):
		text = msgPaymentMissing
	case errors.Is(err, entity.ErrTrialNotFound):
		text = msgNoPastTrial
	case errors.Is(err, entity.ErrInvalidTransition):
		text = msgNotNow
	case errors.As(err, &verrs):
		text = msgChooseOption
	default:
		if sendErr := b.send(ctx, chatID, msgFailure, nil); sendErr != nil {
			b.log(ctx).Warn("failed to send failure reply", "chat_id", chatID, "error", sendErr)
		}
		return err
	}

	b.log(ctx).Debug("action refused", "chat_id", chatID, "reason", err)
	return b.send(ctx, chatID, text, nil)
}
