package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/usecase"
)

const DefaultReminderTick = time.Minute

const reminderLayout = "2006-01-02 15:04"

type reminderRule struct {
	which  entity.Reminder
	lead   time.Duration // send once the trial is this close
	window time.Duration // how far ahead to look
	text   string
}

var reminderRules = []reminderRule{
	{
		which:  entity.Reminder24h,
		lead:   24 * time.Hour,
		window: 25 * time.Hour,
		text:   "Eslatma: sinov darsi 24 soatdan keyin bo‘ladi.\nSana: %s\nMeet: %s",
	},
	{
		which:  entity.Reminder1h,
		lead:   time.Hour,
		window: 2 * time.Hour,
		text:   "Eslatma: sinov darsi 1 soatdan keyin bo‘ladi.\nSana: %s\nMeet: %s",
	},
}

// ReminderWorker polls the trials sheet and sends the 24h and 1h reminders.
// A reminder is flagged only after it was delivered, so a crash between the two
// can repeat it but never lose it.
type ReminderWorker struct {
	trials   entity.TrialRepository
	sender   usecase.Messenger
	location *time.Location
	tick     time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewReminderWorker(trials entity.TrialRepository, sender usecase.Messenger, location *time.Location, tick time.Duration, logger *slog.Logger) *ReminderWorker {
	if location == nil {
		location = time.UTC
	}
	if tick <= 0 {
		tick = DefaultReminderTick
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderWorker{
		trials:   trials,
		sender:   sender,
		location: location,
		tick:     tick,
		now:      time.Now,
		logger:   logger.With("worker", "reminders"),
	}
}

// WithClock replaces the wall clock, for tests.
func (w *ReminderWorker) WithClock(now func() time.Time) *ReminderWorker {
	w.now = now
	return w
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info("reminder worker started", "tick", w.tick.String())

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass and returns how many reminders went out.
func (w *ReminderWorker) RunOnce(ctx context.Context) int {
	now := w.now().In(w.location)
	sent := 0
	for _, rule := range reminderRules {
		trials, err := w.trials.ListInWindow(ctx, now, now.Add(rule.window))
		if err != nil {
			w.logger.Error("failed to list upcoming trials", "reminder", string(rule.which), "error", err)
			metrics.RecordReminder(string(rule.which), "error")
			continue
		}
		for _, trial := range trials {
			if ctx.Err() != nil {
				return sent
			}
			if w.remind(ctx, now, rule, trial) {
				sent++
			}
		}
	}
	return sent
}

func (w *ReminderWorker) remind(ctx context.Context, now time.Time, rule reminderRule, trial *entity.Trial) bool {
	if trial.ReminderSent(rule.which) {
		return false
	}
	remaining := trial.ScheduledAt.Sub(now)
	if remaining < 0 || remaining > rule.lead {
		return false
	}

	log := w.logger.With("tg_id", trial.UserID, "trial_at", entity.FormatTimestamp(trial.ScheduledAt), "reminder", string(rule.which))

	text := fmt.Sprintf(rule.text, trial.ScheduledAt.In(w.location).Format(reminderLayout), trial.MeetLink)
	if err := w.sender.SendText(ctx, trial.UserID, text); err != nil {
		log.Warn("failed to send reminder", "error", err)
		metrics.RecordReminder(string(rule.which), "send_failed")
		return false
	}
	if err := w.trials.MarkReminderSent(ctx, trial.Key(), rule.which); err != nil {
		log.Error("reminder sent but flag not stored", "error", err)
		metrics.RecordReminder(string(rule.which), "mark_failed")
		return true
	}

	trial.Reminded24h = trial.Reminded24h || rule.which == entity.Reminder24h
	trial.Reminded1h = trial.Reminded1h || rule.which == entity.Reminder1h
	log.Info("reminder sent")
	metrics.RecordReminder(string(rule.which), "sent")
	return true
}
