package usecase

import (
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type RegisterLeadInput struct {
	UserID   int64
	Username string
	Name     string
	Phone    string
	Goal     string
	Level    string
	Source   string
}

type BookTrialOutput struct {
	Trial *entity.Trial
	Lead  *entity.Lead
}

type CompleteTrialInput struct {
	UserID int64
	Note   string
}

type SubmitPaymentInput struct {
	UserID int64
	Proof  entity.Proof
}

type SubmitPaymentOutput struct {
	Lead    *entity.Lead
	Payment *entity.Payment
}

type ReviewPaymentInput struct {
	AdminID     int64
	UserID      int64
	SubmittedAt time.Time
	Approve     bool
}

type ReviewPaymentOutput struct {
	Lead    *entity.Lead
	Payment *entity.Payment
}

type BroadcastInput struct {
	Segment Segment
	Text    string
}

type BroadcastSummary struct {
	Segment Segment
	Targets int
	Sent    int
	Failed  int
}
