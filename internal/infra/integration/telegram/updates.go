package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xavierca1/lead-engine/internal/bot"
	"github.com/xavierca1/lead-engine/internal/entity"
)

// DispatchFunc receives converted updates, e.g. bot.Dispatcher.Dispatch.
type DispatchFunc func(ctx context.Context, u bot.Update) bool

// ConvertUpdate maps a Bot API update onto bot.Update. ok is false for update
// types the bot does not handle.
func ConvertUpdate(u tgbotapi.Update) (bot.Update, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		out := bot.Update{
			ID:           u.UpdateID,
			Kind:         bot.UpdateCallback,
			CallbackID:   cq.ID,
			CallbackData: cq.Data,
		}
		if cq.From != nil {
			out.UserID = cq.From.ID
			out.Username = cq.From.UserName
			out.ChatID = cq.From.ID
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			out.ChatID = cq.Message.Chat.ID
		}
		return out, out.UserID != 0

	case u.ChatJoinRequest != nil:
		jr := u.ChatJoinRequest
		return bot.Update{
			ID:       u.UpdateID,
			Kind:     bot.UpdateJoinRequest,
			UserID:   jr.From.ID,
			Username: jr.From.UserName,
			ChatID:   jr.Chat.ID,
		}, jr.From.ID != 0

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil {
			return bot.Update{}, false
		}
		out := bot.Update{
			ID:       u.UpdateID,
			Kind:     bot.UpdateMessage,
			UserID:   m.From.ID,
			Username: m.From.UserName,
			ChatID:   m.Chat.ID,
			Text:     m.Text,
		}
		if m.Text == "" {
			out.Text = m.Caption
		}
		if m.Contact != nil {
			out.ContactPhone = m.Contact.PhoneNumber
		}
		out.Attachment = attachment(m)
		return out, true
	}
	return bot.Update{}, false
}

func attachment(m *tgbotapi.Message) *bot.Attachment {
	if len(m.Photo) > 0 {
		best := m.Photo[len(m.Photo)-1]
		for _, p := range m.Photo {
			if p.FileSize > best.FileSize {
				best = p
			}
		}
		return &bot.Attachment{FileID: best.FileID, Kind: entity.ProofPhoto}
	}
	if m.Document != nil {
		return &bot.Attachment{FileID: m.Document.FileID, Kind: entity.ProofDocument}
	}
	return nil
}

// Poll long-polls the Bot API and hands updates to dispatch until ctx is done.
func (c *Client) Poll(ctx context.Context, dispatch DispatchFunc) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	cfg.AllowedUpdates = AllowedUpdates

	updates := c.api.GetUpdatesChan(cfg)
	defer c.api.StopReceivingUpdates()

	c.logger.Info("polling for updates")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("polling stopped")
			return nil
		case raw, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram: update channel closed")
			}
			u, ok := ConvertUpdate(raw)
			if !ok {
				c.logger.Debug("ignoring update", "update_id", raw.UpdateID)
				continue
			}
			dispatch(ctx, u)
		}
	}
}

// SetWebhook registers url with Telegram. Deliveries carry secret in the
// X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", AllowedUpdates); err != nil {
		return err
	}
	if _, err := c.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("telegram: setWebhook: %w", err)
	}
	return nil
}

func (c *Client) DeleteWebhook() error {
	if _, err := c.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("telegram: deleteWebhook: %w", err)
	}
	return nil
}
