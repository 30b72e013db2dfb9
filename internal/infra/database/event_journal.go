package database

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
)

// EventJournal keeps an append-only audit trail of lifecycle events.
type EventJournal struct {
	table *table
}

func NewEventJournal(store Storage) *EventJournal {
	return &EventJournal{
		table: newTable(store, EventsSheet, EventColumns, func(v map[string]string) string {
			return strings.TrimSpace(v["id"])
		}),
	}
}

// Record appends the event unless this process already wrote a row with the
// same id, so a redelivered message does not produce a second row.
func (j *EventJournal) Record(ctx context.Context, id, eventType string, userID int64, status string, at time.Time) error {
	if _, ok := j.table.lookup(id); ok {
		return nil
	}
	_, err := j.table.append(ctx, map[string]string{
		"id":          id,
		"type":        eventType,
		"tg_id":       formatID(userID),
		"status":      status,
		"occurred_at": entity.FormatTimestamp(at),
	})
	return err
}
