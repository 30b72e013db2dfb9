package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

func (b *Bot) handleCommand(ctx context.Context, u Update, name, args string) error {
	switch name {
	case "start", "register":
		return b.startScene(ctx, u, dialog.SceneRegistration)
	case "menu":
		return b.send(ctx, u.ChatID, msgMainMenu, mainMenuKeyboard)
	case "cancel":
		return b.cancel(ctx, u)
	case "admin":
		if err := b.Admins.Authorize(u.UserID); err != nil {
			return err
		}
		return b.send(ctx, u.ChatID, msgAdminPanel, adminKeyboard)
	case "admininfo":
		if err := b.Admins.Authorize(u.UserID); err != nil {
			return err
		}
		return b.send(ctx, u.ChatID, fmt.Sprintf("GROUP_ID: %d\nBot: ready", b.settings.GroupID), nil)
	case "healthcheck":
		return b.healthcheck(ctx, u)
	case "trialdone":
		return b.trialDone(ctx, u, args)
	}
	return b.send(ctx, u.ChatID, msgMainMenu, mainMenuKeyboard)
}

// cancel drops whatever dialog the user is in.
func (b *Bot) cancel(ctx context.Context, u Update) error {
	if err := b.Sessions.Delete(ctx, u.UserID); err != nil {
		return err
	}
	if err := b.send(ctx, u.ChatID, msgCancelled, nil); err != nil {
		return err
	}
	return b.send(ctx, u.ChatID, msgMainMenu, mainMenuKeyboard)
}

func (b *Bot) healthcheck(ctx context.Context, u Update) error {
	if err := b.Admins.Authorize(u.UserID); err != nil {
		return err
	}

	uptime := b.now().Sub(b.startedAt).Round(time.Second)
	width, err := b.Health.HeaderWidth(ctx)
	if err != nil {
		b.log(ctx).Error("healthcheck storage probe failed", "error", err)
		return b.send(ctx, u.ChatID, fmt.Sprintf("Uptime: %s\nSheets: ERROR", uptime), nil)
	}
	return b.send(ctx, u.ChatID, fmt.Sprintf("Uptime: %s\nSheets: OK (Leads headers: %d)", uptime, width), nil)
}

func (b *Bot) trialDone(ctx context.Context, u Update, args string) error {
	if err := b.Admins.Authorize(u.UserID); err != nil {
		return err
	}

	userID, err := strconv.ParseInt(args, 10, 64)
	if err != nil || userID == 0 {
		return b.send(ctx, u.ChatID, msgTrialDoneUsage, nil)
	}

	lead, err := b.CompleteTrial.Execute(ctx, usecase.CompleteTrialInput{UserID: userID})
	if err != nil {
		return err
	}
	return b.send(ctx, u.ChatID, fmt.Sprintf(msgTrialDone, lead.UserID, lead.Status), nil)
}
