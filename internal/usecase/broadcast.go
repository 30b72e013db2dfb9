package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
)

// Segment is a lead status or SegmentAll.
type Segment string

const SegmentAll Segment = "ALL"

// Segments lists the choices shown to the admin.
var Segments = []Segment{
	Segment(entity.StatusNew),
	Segment(entity.StatusTrialBooked),
	Segment(entity.StatusTrialDone),
	Segment(entity.StatusPaymentSent),
	Segment(entity.StatusActive),
	Segment(entity.StatusInactive),
	SegmentAll,
}

func ParseSegment(s string) (Segment, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == string(SegmentAll) {
		return SegmentAll, true
	}
	if st, ok := entity.ParseLeadStatus(v); ok {
		return Segment(st), true
	}
	return "", false
}

const DefaultBroadcastDelay = 100 * time.Millisecond

// BroadcastUseCase sends one text to every lead of a segment, one at a time.
type BroadcastUseCase struct {
	Leads  entity.LeadRepository
	Sender Messenger
	Delay  time.Duration
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

func NewBroadcastUseCase(leads entity.LeadRepository, sender Messenger, delay time.Duration, logger *slog.Logger) *BroadcastUseCase {
	return &BroadcastUseCase{Leads: leads, Sender: sender, Delay: delay, Logger: logger}
}

// Execute resolves the segment now, not when it was picked, then sends with a
// fixed pause between messages. A failed recipient is counted and skipped.
// Cancelling ctx stops the run and returns what was sent so far.
func (uc *BroadcastUseCase) Execute(ctx context.Context, input BroadcastInput) (BroadcastSummary, error) {
	summary := BroadcastSummary{Segment: input.Segment}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		return summary, ErrEmptyMessage
	}
	segment, ok := ParseSegment(string(input.Segment))
	if !ok {
		return summary, ErrInvalidSegment
	}
	summary.Segment = segment

	var (
		leads []*entity.Lead
		err   error
	)
	if segment == SegmentAll {
		leads, err = uc.Leads.ListAll(ctx)
	} else {
		leads, err = uc.Leads.ListByStatus(ctx, entity.LeadStatus(segment), 0)
	}
	if err != nil {
		return summary, err
	}

	logger := orDefault(uc.Logger)
	sleep := uc.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	summary.Targets = len(leads)
	for i, lead := range leads {
		if i > 0 && uc.Delay > 0 {
			if err := sleep(ctx, uc.Delay); err != nil {
				return summary, err
			}
		}

		if err := uc.Sender.SendText(ctx, lead.UserID, text); err != nil {
			summary.Failed++
			metrics.RecordBroadcast("failed")
			logger.Warn("broadcast delivery failed", "tg_id", lead.UserID, "error", err)
			continue
		}
		summary.Sent++
		metrics.RecordBroadcast("sent")
	}

	logger.Info("broadcast finished",
		"segment", segment,
		"targets", summary.Targets,
		"sent", summary.Sent,
		"failed", summary.Failed,
	)
	return summary, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
