package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xavierca1/lead-engine/internal/bot"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
)

// AllowedUpdates are the update types the bot subscribes to.
var AllowedUpdates = []string{"message", "callback_query", "chat_join_request"}

// Client is the Telegram Bot API side of bot.Gateway.
type Client struct {
	api    *tgbotapi.BotAPI
	logger *slog.Logger
}

func NewClient(token string, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return newClient(api, logger), nil
}

// NewClientWithEndpoint talks to a custom Bot API server, e.g. a local one.
// endpoint is a format string like "https://host/bot%s/%s".
func NewClientWithEndpoint(token, endpoint string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return newClient(api, logger), nil
}

func newClient(api *tgbotapi.BotAPI, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)
	return &Client{api: api, logger: logger}
}

func (c *Client) Username() string {
	return c.api.Self.UserName
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, keyboard bot.Keyboard) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = inlineKeyboard(keyboard)
	}
	return c.send(ctx, "sendMessage", msg)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileID string) error {
	return c.send(ctx, "sendPhoto", tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID)))
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileID string) error {
	return c.send(ctx, "sendDocument", tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID)))
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return c.request(ctx, "answerCallbackQuery", tgbotapi.NewCallback(callbackID, text))
}

func (c *Client) ApproveJoin(ctx context.Context, chatID, userID int64) error {
	return c.request(ctx, "approveChatJoinRequest", tgbotapi.ApproveChatJoinRequestConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		UserID:     userID,
	})
}

func (c *Client) DeclineJoin(ctx context.Context, chatID, userID int64) error {
	return c.request(ctx, "declineChatJoinRequest", tgbotapi.DeclineChatJoinRequest{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		UserID:     userID,
	})
}

func (c *Client) send(ctx context.Context, method string, msg tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(msg); err != nil {
		metrics.RecordIntegrationError("telegram")
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, method string, cfg tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(cfg); err != nil {
		metrics.RecordIntegrationError("telegram")
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	return nil
}

func inlineKeyboard(kb bot.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
