package bot

import (
	"context"
	"strings"
	"sync"
)

type sentMessage struct {
	ChatID   int64
	Kind     string
	Text     string
	Keyboard Keyboard
}

// fakeGateway records every outbound call.
type fakeGateway struct {
	mu       sync.Mutex
	sent     []sentMessage
	answered []string
	approved []int64
	declined []int64
	failTo   map[int64]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failTo: make(map[int64]error)}
}

func (g *fakeGateway) record(m sentMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.failTo[m.ChatID]; err != nil {
		return err
	}
	g.sent = append(g.sent, m)
	return nil
}

func (g *fakeGateway) SendText(_ context.Context, chatID int64, text string, kb Keyboard) error {
	return g.record(sentMessage{ChatID: chatID, Kind: "text", Text: text, Keyboard: kb})
}

func (g *fakeGateway) SendPhoto(_ context.Context, chatID int64, fileID string) error {
	return g.record(sentMessage{ChatID: chatID, Kind: "photo", Text: fileID})
}

func (g *fakeGateway) SendDocument(_ context.Context, chatID int64, fileID string) error {
	return g.record(sentMessage{ChatID: chatID, Kind: "document", Text: fileID})
}

func (g *fakeGateway) AnswerCallback(_ context.Context, callbackID, _ string) error {
	g.mu.Lock()
	g.answered = append(g.answered, callbackID)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) ApproveJoin(_ context.Context, _, userID int64) error {
	g.mu.Lock()
	g.approved = append(g.approved, userID)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) DeclineJoin(_ context.Context, _, userID int64) error {
	g.mu.Lock()
	g.declined = append(g.declined, userID)
	g.mu.Unlock()
	return nil
}

func (g *fakeGateway) to(chatID int64) []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []sentMessage
	for _, m := range g.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (g *fakeGateway) last(chatID int64) sentMessage {
	msgs := g.to(chatID)
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

// button finds the callback data of the first button whose data has prefix.
func (g *fakeGateway) button(chatID int64, prefix string) string {
	for _, m := range g.to(chatID) {
		for _, row := range m.Keyboard {
			for _, b := range row {
				if strings.HasPrefix(b.Data, prefix) {
					return b.Data
				}
			}
		}
	}
	return ""
}
