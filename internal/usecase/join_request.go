package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/lead-engine/internal/entity"
)

// JoinRequestUseCase decides whether a user may enter the paid students group.
type JoinRequestUseCase struct {
	Leads entity.LeadRepository
}

func NewJoinRequestUseCase(leads entity.LeadRepository) *JoinRequestUseCase {
	return &JoinRequestUseCase{Leads: leads}
}

// Execute approves only leads whose status is ACTIVE. Unknown users are declined.
func (uc *JoinRequestUseCase) Execute(ctx context.Context, userID int64) (bool, error) {
	lead, err := uc.Leads.Get(ctx, userID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return lead.Status == entity.StatusActive, nil
}
