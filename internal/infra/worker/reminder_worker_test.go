package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/database"
	"github.com/xavierca1/lead-engine/internal/infra/sheets"
	"github.com/xavierca1/lead-engine/internal/infra/worker"
)

type sentText struct {
	ChatID int64
	Text   string
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []sentText
	failTo map[int64]error
}

func (s *recordingSender) SendText(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failTo[chatID]; err != nil {
		return err
	}
	s.sent = append(s.sent, sentText{ChatID: chatID, Text: text})
	return nil
}

var tashkent = time.FixedZone("Asia/Tashkent", 5*60*60)

func setup(t *testing.T, now time.Time, trials ...*entity.Trial) (*worker.ReminderWorker, *database.TrialRepository, *recordingSender) {
	t.Helper()
	repo := database.NewTrialRepository(sheets.NewMemory())
	for _, tr := range trials {
		require.NoError(t, repo.Append(context.Background(), tr))
	}
	sender := &recordingSender{failTo: map[int64]error{}}
	w := worker.NewReminderWorker(repo, sender, tashkent, time.Minute, nil).
		WithClock(func() time.Time { return now })
	return w, repo, sender
}

func TestReminderWorkerSends24hOnce(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	trial := entity.NewTrial(1001, now.Add(23*time.Hour+30*time.Minute), "https://meet.google.com/abc", now.Add(-48*time.Hour))
	w, repo, sender := setup(t, now, trial)

	assert.Equal(t, 1, w.RunOnce(context.Background()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(1001), sender.sent[0].ChatID)
	assert.Equal(t,
		"Eslatma: sinov darsi 24 soatdan keyin bo‘ladi.\nSana: 2026-10-17 19:30\nMeet: https://meet.google.com/abc",
		sender.sent[0].Text)

	stored, err := repo.ListByUser(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Reminded24h)
	assert.False(t, stored[0].Reminded1h)

	assert.Equal(t, 0, w.RunOnce(context.Background()))
	assert.Len(t, sender.sent, 1)
}

func TestReminderWorkerSkipsOutsideWindow(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	tooEarly := entity.NewTrial(1, now.Add(24*time.Hour+30*time.Minute), "l", now)
	passed := entity.NewTrial(2, now.Add(-time.Minute), "l", now)
	w, _, sender := setup(t, now, tooEarly, passed)

	assert.Equal(t, 0, w.RunOnce(context.Background()))
	assert.Empty(t, sender.sent)
}

func TestReminderWorkerLastHourSendsBoth(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	trial := entity.NewTrial(7, now.Add(40*time.Minute), "l", now.Add(-time.Hour))
	w, repo, sender := setup(t, now, trial)

	assert.Equal(t, 2, w.RunOnce(context.Background()))
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1].Text, "1 soatdan keyin")

	stored, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, stored[0].Reminded24h)
	assert.True(t, stored[0].Reminded1h)
}

func TestReminderWorkerFailureDoesNotStopOthers(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	blocked := entity.NewTrial(1, now.Add(2*time.Hour), "l", now)
	fine := entity.NewTrial(2, now.Add(3*time.Hour), "l", now)
	w, repo, sender := setup(t, now, blocked, fine)
	sender.failTo[1] = errors.New("bot was blocked by the user")

	assert.Equal(t, 1, w.RunOnce(context.Background()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(2), sender.sent[0].ChatID)

	stored, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, stored[0].Reminded24h, "undelivered reminder must be retried")
}

func TestReminderWorkerStopsOnCancel(t *testing.T) {
	now := time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)
	w, _, _ := setup(t, now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
