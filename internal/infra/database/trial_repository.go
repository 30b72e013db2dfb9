package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type TrialRepository struct {
	table *table
}

func NewTrialRepository(store Storage) *TrialRepository {
	return &TrialRepository{
		table: newTable(store, TrialsSheet, TrialColumns, func(v map[string]string) string {
			return trialKey(parseID(v["tg_id"]), v["trial_at"])
		}),
	}
}

// trialKey normalizes the timestamp so a cell retyped by an operator still matches.
func trialKey(userID int64, trialAt string) string {
	if userID == 0 {
		return ""
	}
	if t, err := entity.ParseTimestamp(strings.TrimSpace(trialAt)); err == nil && !t.IsZero() {
		trialAt = entity.FormatTimestamp(t)
	}
	return fmt.Sprintf("%d|%s", userID, trialAt)
}

func keyString(key entity.TrialKey) string {
	return trialKey(key.UserID, entity.FormatTimestamp(key.ScheduledAt))
}

func (r *TrialRepository) Append(ctx context.Context, trial *entity.Trial) error {
	_, err := r.table.append(ctx, trialValues(trial))
	return err
}

func (r *TrialRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]*entity.Trial, error) {
	trials, err := r.all(ctx)
	if err != nil {
		return nil, err
	}

	var out []*entity.Trial
	for _, t := range trials {
		if t.ScheduledAt.Before(from) || t.ScheduledAt.After(to) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (r *TrialRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Trial, error) {
	trials, err := r.all(ctx)
	if err != nil {
		return nil, err
	}

	var out []*entity.Trial
	for _, t := range trials {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TrialRepository) MarkReminderSent(ctx context.Context, key entity.TrialKey, which entity.Reminder) error {
	col := "remind_24h_sent"
	if which == entity.Reminder1h {
		col = "remind_1h_sent"
	}
	return r.set(ctx, key, map[string]string{col: formatBool(true)})
}

func (r *TrialRepository) MarkAttended(ctx context.Context, key entity.TrialKey, note string) error {
	values := map[string]string{"attended": formatBool(true)}
	if note != "" {
		values["note"] = note
	}
	return r.set(ctx, key, values)
}

func (r *TrialRepository) set(ctx context.Context, key entity.TrialKey, values map[string]string) error {
	header, rec, ok, err := r.table.find(ctx, keyString(key))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d at %s", entity.ErrTrialNotFound, key.UserID, entity.FormatTimestamp(key.ScheduledAt))
	}
	return r.table.update(ctx, header, rec, values)
}

// all skips rows whose trial_at cannot be parsed; they can never be scheduled.
func (r *TrialRepository) all(ctx context.Context) ([]*entity.Trial, error) {
	records, err := r.table.list(ctx)
	if err != nil {
		return nil, err
	}

	trials := make([]*entity.Trial, 0, len(records))
	for _, rec := range records {
		t, ok := trialFromRecord(rec)
		if !ok {
			continue
		}
		trials = append(trials, t)
	}
	return trials, nil
}

func trialValues(t *entity.Trial) map[string]string {
	return map[string]string{
		"tg_id":           formatID(t.UserID),
		"trial_at":        entity.FormatTimestamp(t.ScheduledAt),
		"meet_link":       t.MeetLink,
		"booked_at":       entity.FormatTimestamp(t.BookedAt),
		"remind_24h_sent": formatBool(t.Reminded24h),
		"remind_1h_sent":  formatBool(t.Reminded1h),
		"attended":        formatBool(t.Attended),
		"note":            t.Note,
	}
}

func trialFromRecord(rec record) (*entity.Trial, bool) {
	scheduledAt, err := entity.ParseTimestamp(strings.TrimSpace(rec.get("trial_at")))
	if err != nil || scheduledAt.IsZero() {
		return nil, false
	}
	bookedAt, _ := entity.ParseTimestamp(rec.get("booked_at"))

	return &entity.Trial{
		UserID:      parseID(rec.get("tg_id")),
		ScheduledAt: scheduledAt,
		MeetLink:    rec.get("meet_link"),
		BookedAt:    bookedAt,
		Reminded24h: parseBool(rec.get("remind_24h_sent")),
		Reminded1h:  parseBool(rec.get("remind_1h_sent")),
		Attended:    parseBool(rec.get("attended")),
		Note:        rec.get("note"),
	}, true
}
