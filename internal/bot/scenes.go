package bot

import (
	"context"
	"fmt"

	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

func (b *Bot) startScene(ctx context.Context, u Update, scene dialog.Scene) error {
	session := dialog.Start(u.UserID, scene, b.now())
	text, kb := stepPrompt(session.Step)

	switch scene {
	case dialog.ScenePayment:
		lead, err := b.Leads.Get(ctx, u.UserID)
		if err != nil {
			return err
		}
		if lead.Status == entity.StatusActive {
			return b.send(ctx, u.ChatID, msgAlreadyActive, nil)
		}
		text = fmt.Sprintf(msgAskProof, formatAmount(b.settings.PaymentAmount), b.settings.CardNumber)
	case dialog.SceneBroadcast:
		if err := b.Admins.Authorize(u.UserID); err != nil {
			return err
		}
	}

	if err := b.Sessions.Save(ctx, session); err != nil {
		return err
	}
	return b.send(ctx, u.ChatID, text, kb)
}

func (b *Bot) continueDialog(ctx context.Context, u Update, s *dialog.Session, in dialog.Input) error {
	scene := s.Step.Scene()
	if scene == dialog.SceneBroadcast {
		if err := b.Admins.Authorize(u.UserID); err != nil {
			return err
		}
	}

	res := dialog.Apply(s, in)
	switch res.Outcome {
	case dialog.Advance:
		if err := b.Sessions.Save(ctx, s); err != nil {
			return err
		}
		if s.Step == dialog.StepBcConfirm {
			text := fmt.Sprintf(msgConfirmBroadcast, s.Get(dialog.FieldSegment), s.Get(dialog.FieldText))
			return b.send(ctx, u.ChatID, text, broadcastConfirmKeyboard)
		}
		text, kb := stepPrompt(s.Step)
		return b.send(ctx, u.ChatID, text, kb)

	case dialog.Terminate:
		err := b.finishScene(ctx, u, scene, s)
		if delErr := b.Sessions.Delete(ctx, u.UserID); delErr != nil {
			b.log(ctx).Warn("failed to clear session", "user_id", u.UserID, "error", delErr)
		}
		return err
	}
	return b.suspend(ctx, u.ChatID, s.Step, res.Reason)
}

func (b *Bot) suspend(ctx context.Context, chatID int64, step dialog.Step, reason string) error {
	text, kb := suspendPrompt(step, reason)
	return b.send(ctx, chatID, text, kb)
}

func (b *Bot) finishScene(ctx context.Context, u Update, scene dialog.Scene, s *dialog.Session) error {
	switch scene {
	case dialog.SceneRegistration:
		_, err := b.Register.Execute(ctx, usecase.RegisterLeadInput{
			UserID:   u.UserID,
			Username: u.Username,
			Name:     s.Get(dialog.FieldName),
			Phone:    s.Get(dialog.FieldPhone),
			Goal:     s.Get(dialog.FieldGoal),
			Level:    s.Get(dialog.FieldLevel),
			Source:   s.Get(dialog.FieldSource),
		})
		if err != nil {
			return err
		}
		if err := b.send(ctx, u.ChatID, msgRegistered, nil); err != nil {
			return err
		}
		return b.send(ctx, u.ChatID, msgMainMenu, mainMenuKeyboard)

	case dialog.ScenePayment:
		_, err := b.SubmitPayment.Execute(ctx, usecase.SubmitPaymentInput{
			UserID: u.UserID,
			Proof: entity.Proof{
				FileID: s.Get(dialog.FieldProofID),
				Kind:   entity.ProofKind(s.Get(dialog.FieldProofKind)),
			},
		})
		if err != nil {
			return err
		}
		return b.send(ctx, u.ChatID, msgProofTaken, nil)

	case dialog.SceneBroadcast:
		if s.Get(dialog.FieldConfirmed) != "true" {
			return b.send(ctx, u.ChatID, msgCancelled, nil)
		}
		input := usecase.BroadcastInput{
			Segment: usecase.Segment(s.Get(dialog.FieldSegment)),
			Text:    s.Get(dialog.FieldText),
		}
		if err := b.send(ctx, u.ChatID, msgBroadcastStarted, nil); err != nil {
			return err
		}
		b.runBroadcast(ctx, u.ChatID, input)
		return nil
	}
	return nil
}

// runBroadcast sends in the background so the admin's own updates keep flowing.
// The summary goes back to the admin chat when the run ends.
func (b *Bot) runBroadcast(ctx context.Context, adminChat int64, input usecase.BroadcastInput) {
	b.background.Add(1)
	go func() {
		defer b.background.Done()

		summary, err := b.Broadcast.Execute(ctx, input)
		text := fmt.Sprintf(msgBroadcastDone, summary.Sent, summary.Failed)
		if err != nil {
			b.log(ctx).Error("broadcast aborted", "segment", input.Segment, "error", err)
			text = fmt.Sprintf(msgBroadcastFailed, summary.Sent, summary.Failed)
		}
		if err := b.send(context.WithoutCancel(ctx), adminChat, text, nil); err != nil {
			b.log(ctx).Warn("failed to report broadcast summary", "chat_id", adminChat, "error", err)
		}
	}()
}
