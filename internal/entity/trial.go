package entity

import (
	"context"
	"time"
)

type Reminder string

const (
	Reminder24h Reminder = "24h"
	Reminder1h  Reminder = "1h"
)

// TrialKey identifies one booking: a user can book again after a trial has passed.
type TrialKey struct {
	UserID      int64
	ScheduledAt time.Time
}

type Trial struct {
	UserID      int64     `json:"tg_id"`
	ScheduledAt time.Time `json:"trial_at"`
	MeetLink    string    `json:"meet_link"`
	BookedAt    time.Time `json:"booked_at"`
	Reminded24h bool      `json:"remind_24h_sent"`
	Reminded1h  bool      `json:"remind_1h_sent"`
	Attended    bool      `json:"attended"`
	Note        string    `json:"note,omitempty"`
}

type TrialRepository interface {
	Append(ctx context.Context, trial *Trial) error
	// ListInWindow returns trials scheduled in [from, to], both ends inclusive.
	ListInWindow(ctx context.Context, from, to time.Time) ([]*Trial, error)
	ListByUser(ctx context.Context, userID int64) ([]*Trial, error)
	MarkReminderSent(ctx context.Context, key TrialKey, which Reminder) error
	MarkAttended(ctx context.Context, key TrialKey, note string) error
}

func NewTrial(userID int64, scheduledAt time.Time, meetLink string, now time.Time) *Trial {
	return &Trial{
		UserID:      userID,
		ScheduledAt: Stamp(scheduledAt),
		MeetLink:    meetLink,
		BookedAt:    Stamp(now),
	}
}

func (t *Trial) Key() TrialKey {
	return TrialKey{UserID: t.UserID, ScheduledAt: t.ScheduledAt}
}

func (t *Trial) ReminderSent(which Reminder) bool {
	if which == Reminder24h {
		return t.Reminded24h
	}
	return t.Reminded1h
}

// NextSlot returns the first weekday/hour slot in loc strictly after now.
func NextSlot(now time.Time, loc *time.Location, weekday time.Weekday, hour int) time.Time {
	local := now.In(loc)
	days := (int(weekday) - int(local.Weekday()) + 7) % 7
	slot := time.Date(local.Year(), local.Month(), local.Day()+days, hour, 0, 0, 0, loc)
	if !slot.After(local) {
		slot = slot.AddDate(0, 0, 7)
	}
	return slot
}
