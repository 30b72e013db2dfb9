package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-engine/internal/entity"
)

func TestParseSegment(t *testing.T) {
	tests := []struct {
		in   string
		want Segment
		ok   bool
	}{
		{"ALL", SegmentAll, true},
		{" active ", Segment(entity.StatusActive), true},
		{"PAID_VERIFIED", Segment(entity.StatusActive), true},
		{"VIP", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSegment(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBroadcastCountsSentAndFailed(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockMessenger)

	active := []*entity.Lead{
		{UserID: 1, Status: entity.StatusActive},
		{UserID: 2, Status: entity.StatusActive},
		{UserID: 3, Status: entity.StatusActive},
	}
	leads.On("ListByStatus", mock.Anything, entity.StatusActive, 0).Return(active, nil)
	sender.On("SendText", mock.Anything, int64(1), "Dars bugun").Return(nil)
	sender.On("SendText", mock.Anything, int64(2), "Dars bugun").Return(errors.New("bot was blocked by the user"))
	sender.On("SendText", mock.Anything, int64(3), "Dars bugun").Return(nil)

	var pauses []time.Duration
	uc := NewBroadcastUseCase(leads, sender, DefaultBroadcastDelay, nil)
	uc.Sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	summary, err := uc.Execute(context.Background(), BroadcastInput{Segment: "ACTIVE", Text: " Dars bugun "})
	require.NoError(t, err)
	assert.Equal(t, BroadcastSummary{Segment: Segment(entity.StatusActive), Targets: 3, Sent: 2, Failed: 1}, summary)
	assert.Equal(t, summary.Targets, summary.Sent+summary.Failed)
	assert.Equal(t, []time.Duration{DefaultBroadcastDelay, DefaultBroadcastDelay}, pauses)
	sender.AssertExpectations(t)
}

func TestBroadcastAllUsesEveryLead(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockMessenger)

	leads.On("ListAll", mock.Anything).Return([]*entity.Lead{{UserID: 1}, {UserID: 2}}, nil)
	sender.On("SendText", mock.Anything, mock.Anything, "hi").Return(nil)

	uc := NewBroadcastUseCase(leads, sender, 0, nil)
	summary, err := uc.Execute(context.Background(), BroadcastInput{Segment: SegmentAll, Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sent)
	leads.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcastEmptySegment(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockMessenger)
	leads.On("ListByStatus", mock.Anything, entity.StatusInactive, 0).Return([]*entity.Lead{}, nil)

	uc := NewBroadcastUseCase(leads, sender, time.Second, nil)
	summary, err := uc.Execute(context.Background(), BroadcastInput{Segment: "INACTIVE", Text: "hi"})
	require.NoError(t, err)
	assert.Zero(t, summary.Targets)
	sender.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcastRejectsBadInput(t *testing.T) {
	uc := NewBroadcastUseCase(new(MockLeadRepository), new(MockMessenger), 0, nil)

	_, err := uc.Execute(context.Background(), BroadcastInput{Segment: "ACTIVE", Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = uc.Execute(context.Background(), BroadcastInput{Segment: "VIP", Text: "hi"})
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestBroadcastStopsOnCancel(t *testing.T) {
	leads := new(MockLeadRepository)
	sender := new(MockMessenger)
	leads.On("ListAll", mock.Anything).Return([]*entity.Lead{{UserID: 1}, {UserID: 2}, {UserID: 3}}, nil)
	sender.On("SendText", mock.Anything, int64(1), "hi").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	uc := NewBroadcastUseCase(leads, sender, time.Second, nil)
	uc.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	summary, err := uc.Execute(ctx, BroadcastInput{Segment: SegmentAll, Text: "hi"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 3, summary.Targets)
}
