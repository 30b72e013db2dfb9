package entity

import (
	"context"
	"time"
)

type Lead struct {
	UserID        int64      `json:"tg_id"`
	Username      string     `json:"username,omitempty"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone"`
	Goal          string     `json:"goal"`
	Level         string     `json:"level"`
	Source        string     `json:"source"`
	Status        LeadStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LastContactAt time.Time  `json:"last_contact"`
}

// LeadRepository is keyed by the chat platform user id.
type LeadRepository interface {
	Get(ctx context.Context, userID int64) (*Lead, error)
	Upsert(ctx context.Context, lead *Lead) error
	ListByStatus(ctx context.Context, status LeadStatus, limit int) ([]*Lead, error)
	ListAll(ctx context.Context) ([]*Lead, error)
	SetStatus(ctx context.Context, userID int64, status LeadStatus) error
}

// NewLead builds a lead that has just finished registration for the first time.
func NewLead(userID int64, username, name, phone, goal, level, source string, now time.Time) *Lead {
	now = Stamp(now)
	return &Lead{
		UserID:        userID,
		Username:      username,
		Name:          name,
		Phone:         phone,
		Goal:          goal,
		Level:         level,
		Source:        source,
		Status:        StatusNew,
		CreatedAt:     now,
		LastContactAt: now,
	}
}

func (l *Lead) DisplayName() string {
	if l.Username != "" {
		return l.Name + " (@" + l.Username + ")"
	}
	return l.Name
}
