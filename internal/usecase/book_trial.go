package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

// TrialSlot is the weekly time trial lessons take place at.
type TrialSlot struct {
	Location *time.Location
	Weekday  time.Weekday
	Hour     int
}

type BookTrialUseCase struct {
	Leads    entity.LeadRepository
	Trials   entity.TrialRepository
	Events   EventPublisher
	MeetLink string
	Slot     TrialSlot
	Now      func() time.Time
	Logger   *slog.Logger
}

func NewBookTrialUseCase(leads entity.LeadRepository, trials entity.TrialRepository, events EventPublisher, meetLink string, slot TrialSlot, logger *slog.Logger) *BookTrialUseCase {
	return &BookTrialUseCase{
		Leads:    leads,
		Trials:   trials,
		Events:   events,
		MeetLink: meetLink,
		Slot:     slot,
		Now:      time.Now,
		Logger:   logger,
	}
}

// Execute books the next slot. When the user already has a future trial, that
// trial is returned together with ErrTrialAlreadyBooked and nothing is written.
func (uc *BookTrialUseCase) Execute(ctx context.Context, userID int64) (*BookTrialOutput, error) {
	lead, err := uc.Leads.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := nowOr(uc.Now)
	trials, err := uc.Trials.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range trials {
		if t.ScheduledAt.After(now) {
			return &BookTrialOutput{Trial: t, Lead: lead}, ErrTrialAlreadyBooked
		}
	}

	next, changed, err := entity.Transition(lead.Status, entity.EventTrialBooked)
	if err != nil {
		return nil, err
	}

	loc := uc.Slot.Location
	if loc == nil {
		loc = time.UTC
	}
	trial := entity.NewTrial(userID, entity.NextSlot(now, loc, uc.Slot.Weekday, uc.Slot.Hour), uc.MeetLink, now)

	// An appended trial makes a retry end in ErrTrialAlreadyBooked, so the
	// status must be in place before the row exists.
	previous := lead.Status
	tx := NewTransaction(uc.Logger)
	if changed {
		tx.Add("set lead status",
			func(ctx context.Context) error { return uc.Leads.SetStatus(ctx, userID, next) },
			func(ctx context.Context) error { return uc.Leads.SetStatus(ctx, userID, previous) },
		)
	}
	tx.Add("append trial",
		func(ctx context.Context) error { return uc.Trials.Append(ctx, trial) },
		nil,
	)
	if err := tx.Execute(ctx); err != nil {
		return nil, err
	}

	if changed {
		lead.Status = next
		metrics.RecordTransition(string(next))
	}

	orDefault(uc.Logger).Info("trial booked", "tg_id", userID, "trial_at", trial.ScheduledAt)
	publishEvent(ctx, uc.Events, uc.Logger, queue.EventTrialBooked, userID, lead.Status, now)
	return &BookTrialOutput{Trial: trial, Lead: lead}, nil
}
