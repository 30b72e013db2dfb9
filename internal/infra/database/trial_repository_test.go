package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/database"
	"github.com/xavierca1/lead-engine/internal/infra/sheets"
)

func TestTrialWindowAndReminderFlags(t *testing.T) {
	ctx := context.Background()
	store := sheets.NewMemory()
	repo := database.NewTrialRepository(store)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	soon := entity.NewTrial(1, now.Add(20*time.Hour), "https://meet.example/x", now)
	later := entity.NewTrial(2, now.Add(72*time.Hour), "https://meet.example/x", now)
	past := entity.NewTrial(3, now.Add(-time.Hour), "https://meet.example/x", now)
	for _, tr := range []*entity.Trial{later, soon, past} {
		require.NoError(t, repo.Append(ctx, tr))
	}

	inWindow, err := repo.ListInWindow(ctx, now, now.Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, inWindow, 1)
	assert.Equal(t, int64(1), inWindow[0].UserID)
	assert.False(t, inWindow[0].Reminded24h)

	require.NoError(t, repo.MarkReminderSent(ctx, soon.Key(), entity.Reminder24h))

	inWindow, err = repo.ListInWindow(ctx, now, now.Add(25*time.Hour))
	require.NoError(t, err)
	require.Len(t, inWindow, 1)
	assert.True(t, inWindow[0].Reminded24h)
	assert.False(t, inWindow[0].Reminded1h)
}

func TestTrialMarkTargetsTheRightBooking(t *testing.T) {
	ctx := context.Background()
	repo := database.NewTrialRepository(sheets.NewMemory())
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	first := entity.NewTrial(1, now.Add(-7*24*time.Hour), "l", now)
	second := entity.NewTrial(1, now.Add(5*time.Hour), "l", now)
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	require.NoError(t, repo.MarkReminderSent(ctx, second.Key(), entity.Reminder1h))
	require.NoError(t, repo.MarkAttended(ctx, first.Key(), "came late"))

	trials, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, trials, 2)
	assert.False(t, trials[0].Reminded1h)
	assert.True(t, trials[0].Attended)
	assert.Equal(t, "came late", trials[0].Note)
	assert.True(t, trials[1].Reminded1h)
	assert.False(t, trials[1].Attended)
}

func TestTrialMarkUnknown(t *testing.T) {
	repo := database.NewTrialRepository(sheets.NewMemory())
	err := repo.MarkReminderSent(context.Background(), entity.TrialKey{UserID: 1, ScheduledAt: time.Now()}, entity.Reminder24h)
	assert.ErrorIs(t, err, entity.ErrTrialNotFound)
}
