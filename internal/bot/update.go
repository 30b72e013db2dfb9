package bot

import (
	"context"
	"strings"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type UpdateKind string

const (
	UpdateMessage     UpdateKind = "message"
	UpdateCallback    UpdateKind = "callback"
	UpdateJoinRequest UpdateKind = "join_request"
)

// Attachment is the file a user sent. For photos it is the largest size.
type Attachment struct {
	FileID string
	Kind   entity.ProofKind
}

// Update is the platform-neutral envelope of one inbound event.
type Update struct {
	ID       int
	Kind     UpdateKind
	UserID   int64
	ChatID   int64
	Username string

	Text         string
	ContactPhone string
	Attachment   *Attachment

	CallbackID   string
	CallbackData string
}

// Command splits "/start@bot arg" into ("start", "arg"). ok is false for plain text.
func (u Update) Command() (name, args string, ok bool) {
	if u.Kind != UpdateMessage || !strings.HasPrefix(u.Text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(strings.TrimSpace(u.Text[1:]), " ")
	name, _, _ = strings.Cut(head, "@")
	return strings.ToLower(name), strings.TrimSpace(rest), name != ""
}

// Button is one inline button; Data comes back as Update.CallbackData.
type Button struct {
	Text string
	Data string
}

type Keyboard [][]Button

// Gateway is the outbound side of the chat platform.
type Gateway interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, fileID string) error
	SendDocument(ctx context.Context, chatID int64, fileID string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	ApproveJoin(ctx context.Context, chatID, userID int64) error
	DeclineJoin(ctx context.Context, chatID, userID int64) error
}

// Messenger adapts a Gateway to plain text delivery.
type Messenger struct {
	Gateway Gateway
}

func (m Messenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.Gateway.SendText(ctx, chatID, text, nil)
}
