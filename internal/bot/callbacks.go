package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

var dialogCallbackPrefixes = []string{
	dialog.CallbackGoal,
	dialog.CallbackLevel,
	dialog.CallbackSource,
	"bc:",
}

func isDialogCallback(data string) bool {
	for _, p := range dialogCallbackPrefixes {
		if strings.HasPrefix(data, p) {
			return true
		}
	}
	return false
}

func (b *Bot) handleCallback(ctx context.Context, u Update) error {
	if err := b.Gateway.AnswerCallback(ctx, u.CallbackID, ""); err != nil {
		b.log(ctx).Warn("failed to answer callback", "callback_id", u.CallbackID, "error", err)
	}

	data := u.CallbackData
	if isDialogCallback(data) {
		s, ok, err := b.Sessions.Get(ctx, u.UserID)
		if err != nil {
			return err
		}
		if !ok || !s.Active() {
			return b.send(ctx, u.ChatID, msgSessionGone, mainMenuKeyboard)
		}
		return b.continueDialog(ctx, u, s, dialog.Input{Kind: dialog.InputCallback, Text: data})
	}

	switch {
	case data == cbMenuRegister:
		return b.startScene(ctx, u, dialog.SceneRegistration)
	case data == cbMenuTrial:
		return b.bookTrial(ctx, u)
	case data == cbMenuPayment:
		return b.startScene(ctx, u, dialog.ScenePayment)
	case data == cbMenuPricing:
		text := fmt.Sprintf(msgPricing, formatAmount(b.settings.PaymentAmount), b.settings.CardNumber)
		return b.send(ctx, u.ChatID, text, nil)
	case data == cbMenuQuestion:
		return b.send(ctx, u.ChatID, msgQuestion, nil)

	case data == cbAdminLeads:
		if err := b.Admins.Authorize(u.UserID); err != nil {
			return err
		}
		return b.send(ctx, u.ChatID, msgChooseStatus, leadStatusKeyboard())
	case strings.HasPrefix(data, cbAdminLeadsPrefix):
		return b.listLeads(ctx, u, strings.TrimPrefix(data, cbAdminLeadsPrefix))
	case data == cbAdminTrials:
		return b.listTrials(ctx, u)
	case data == cbAdminPayments:
		return b.listPending(ctx, u)
	case data == cbAdminBroadcast:
		return b.startScene(ctx, u, dialog.SceneBroadcast)

	case strings.HasPrefix(data, cbPayApprove), strings.HasPrefix(data, cbPayReject):
		return b.review(ctx, u)
	}
	return b.send(ctx, u.ChatID, msgUnknownAction, nil)
}

func (b *Bot) bookTrial(ctx context.Context, u Update) error {
	out, err := b.BookTrial.Execute(ctx, u.UserID)
	if errors.Is(err, usecase.ErrTrialAlreadyBooked) {
		when := out.Trial.ScheduledAt.In(b.settings.Location).Format(dateLayout)
		return b.send(ctx, u.ChatID, fmt.Sprintf(msgTrialExists, when), nil)
	}
	if err != nil {
		return err
	}

	when := out.Trial.ScheduledAt.In(b.settings.Location).Format(dateLayout)
	return b.send(ctx, u.ChatID, fmt.Sprintf(msgTrialBooked, when, out.Trial.MeetLink), nil)
}

func (b *Bot) listLeads(ctx context.Context, u Update, raw string) error {
	if err := b.Admins.Authorize(u.UserID); err != nil {
		return err
	}
	status, ok := entity.ParseLeadStatus(raw)
	if !ok {
		return b.send(ctx, u.ChatID, msgUnknownAction, nil)
	}

	leads, err := b.Leads.ListByStatus(ctx, status, adminListLimit)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		return b.send(ctx, u.ChatID, fmt.Sprintf(msgNoLeads, status), nil)
	}
	return b.send(ctx, u.ChatID, fmt.Sprintf("Leads (%s):\n%s", status, leadLines(leads)), nil)
}

func (b *Bot) listTrials(ctx context.Context, u Update) error {
	if err := b.Admins.Authorize(u.UserID); err != nil {
		return err
	}

	now := b.now()
	trials, err := b.Trials.ListInWindow(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		return b.send(ctx, u.ChatID, msgNoTrials, nil)
	}
	return b.send(ctx, u.ChatID, "Upcoming trials:\n"+trialLines(trials, b.settings.Location), nil)
}

func (b *Bot) listPending(ctx context.Context, u Update) error {
	if err := b.Admins.Authorize(u.UserID); err != nil {
		return err
	}

	pending, err := b.Payments.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return b.send(ctx, u.ChatID, msgNoPending, nil)
	}
	if len(pending) > adminListLimit {
		pending = pending[len(pending)-adminListLimit:]
	}
	for _, p := range pending {
		if err := b.send(ctx, u.ChatID, pendingLine(p), reviewKeyboard(p.UserID, p.SubmittedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) review(ctx context.Context, u Update) error {
	if err := b.Admins.Authorize(u.UserID); err != nil {
		return err
	}
	approve, userID, submittedAt, ok := parseReview(u.CallbackData)
	if !ok {
		return b.send(ctx, u.ChatID, msgUnknownAction, nil)
	}

	out, err := b.ReviewPayment.Execute(ctx, usecase.ReviewPaymentInput{
		AdminID:     u.UserID,
		UserID:      userID,
		SubmittedAt: submittedAt,
		Approve:     approve,
	})
	if err != nil {
		return err
	}

	userText, adminText := msgRejectedUser, msgRejectedAdmin
	if out.Payment.Status == entity.PaymentVerified {
		userText, adminText = msgApprovedUser, msgApprovedAdmin
	}
	if err := b.send(ctx, userID, userText, nil); err != nil {
		b.log(ctx).Warn("failed to tell user about payment review", "tg_id", userID, "error", err)
	}
	return b.send(ctx, u.ChatID, adminText, nil)
}

// handleJoinRequest admits ACTIVE leads to the students group. Requests for
// other chats are left alone.
func (b *Bot) handleJoinRequest(ctx context.Context, u Update) error {
	if b.settings.GroupID != 0 && u.ChatID != b.settings.GroupID {
		b.log(ctx).Debug("join request for unmanaged chat", "chat_id", u.ChatID)
		return nil
	}

	allowed, err := b.JoinRequest.Execute(ctx, u.UserID)
	if err != nil {
		return err
	}
	if allowed {
		return b.Gateway.ApproveJoin(ctx, u.ChatID, u.UserID)
	}
	if err := b.Gateway.DeclineJoin(ctx, u.ChatID, u.UserID); err != nil {
		return err
	}
	return b.send(ctx, u.UserID, msgJoinDeclined, mainMenuKeyboard)
}
