package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

// CompleteTrialUseCase records that a lead attended their most recent past trial.
type CompleteTrialUseCase struct {
	Leads  entity.LeadRepository
	Trials entity.TrialRepository
	Events EventPublisher
	Now    func() time.Time
	Logger *slog.Logger
}

func NewCompleteTrialUseCase(leads entity.LeadRepository, trials entity.TrialRepository, events EventPublisher, logger *slog.Logger) *CompleteTrialUseCase {
	return &CompleteTrialUseCase{Leads: leads, Trials: trials, Events: events, Now: time.Now, Logger: logger}
}

func (uc *CompleteTrialUseCase) Execute(ctx context.Context, input CompleteTrialInput) (*entity.Lead, error) {
	lead, err := uc.Leads.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	next, changed, err := entity.Transition(lead.Status, entity.EventTrialCompleted)
	if err != nil {
		return nil, err
	}

	now := nowOr(uc.Now)
	trials, err := uc.Trials.ListByUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	var last *entity.Trial
	for _, t := range trials {
		if t.ScheduledAt.After(now) {
			continue
		}
		if last == nil || t.ScheduledAt.After(last.ScheduledAt) {
			last = t
		}
	}
	if last == nil {
		return nil, fmt.Errorf("%w: no past trial for %d", entity.ErrTrialNotFound, input.UserID)
	}

	if err := uc.Trials.MarkAttended(ctx, last.Key(), input.Note); err != nil {
		return nil, err
	}
	if changed {
		if err := uc.Leads.SetStatus(ctx, input.UserID, next); err != nil {
			return nil, err
		}
		lead.Status = next
		metrics.RecordTransition(string(next))
	}

	publishEvent(ctx, uc.Events, uc.Logger, queue.EventTrialCompleted, input.UserID, lead.Status, now)
	return lead, nil
}
