package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

type RegisterLeadUseCase struct {
	Leads  entity.LeadRepository
	Events EventPublisher
	Now    func() time.Time
	Logger *slog.Logger
}

func NewRegisterLeadUseCase(leads entity.LeadRepository, events EventPublisher, logger *slog.Logger) *RegisterLeadUseCase {
	return &RegisterLeadUseCase{Leads: leads, Events: events, Now: time.Now, Logger: logger}
}

// Execute stores the registration. A returning lead keeps its status and
// creation time; only the profile fields and last contact change.
func (uc *RegisterLeadUseCase) Execute(ctx context.Context, input RegisterLeadInput) (*entity.Lead, error) {
	if errs := ValidateRegisterLeadInput(input); len(errs) > 0 {
		return nil, errs
	}

	existing, err := uc.Leads.Get(ctx, input.UserID)
	if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
		return nil, err
	}

	now := nowOr(uc.Now)
	lead := entity.NewLead(
		input.UserID,
		strings.TrimSpace(input.Username),
		strings.TrimSpace(input.Name),
		NormalizePhone(input.Phone),
		input.Goal,
		input.Level,
		input.Source,
		now,
	)

	var current entity.LeadStatus
	if existing != nil {
		current = existing.Status
		lead.CreatedAt = existing.CreatedAt
	}
	status, changed, err := entity.Transition(current, entity.EventRegistered)
	if err != nil {
		return nil, err
	}
	lead.Status = status

	if err := uc.Leads.Upsert(ctx, lead); err != nil {
		return nil, err
	}
	if changed {
		metrics.RecordTransition(string(status))
	}

	orDefault(uc.Logger).Info("lead registered", "tg_id", lead.UserID, "status", lead.Status, "returning", existing != nil)
	publishEvent(ctx, uc.Events, uc.Logger, queue.EventLeadRegistered, lead.UserID, lead.Status, now)
	return lead, nil
}
