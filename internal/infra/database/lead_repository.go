package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type LeadRepository struct {
	table *table
}

func NewLeadRepository(store Storage) *LeadRepository {
	return &LeadRepository{
		table: newTable(store, LeadsSheet, LeadColumns, func(v map[string]string) string {
			return strings.TrimSpace(v["tg_id"])
		}),
	}
}

func (r *LeadRepository) Get(ctx context.Context, userID int64) (*entity.Lead, error) {
	_, rec, ok, err := r.table.find(ctx, formatID(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", entity.ErrLeadNotFound, userID)
	}
	return leadFromRecord(rec), nil
}

// Upsert appends a row for a new user, otherwise rewrites every known column of
// the existing row in one batch.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	header, rec, ok, err := r.table.find(ctx, formatID(lead.UserID))
	if err != nil {
		return err
	}
	if !ok {
		_, err = r.table.append(ctx, leadValues(lead))
		return err
	}
	return r.table.update(ctx, header, rec, leadValues(lead))
}

// ListByStatus keeps sheet order and returns only the last limit matches.
// A limit of zero or less returns every match.
func (r *LeadRepository) ListByStatus(ctx context.Context, status entity.LeadStatus, limit int) ([]*entity.Lead, error) {
	records, err := r.table.list(ctx)
	if err != nil {
		return nil, err
	}

	var leads []*entity.Lead
	for _, rec := range records {
		lead := leadFromRecord(rec)
		if lead.Status == status {
			leads = append(leads, lead)
		}
	}
	if limit > 0 && len(leads) > limit {
		leads = leads[len(leads)-limit:]
	}
	return leads, nil
}

func (r *LeadRepository) ListAll(ctx context.Context) ([]*entity.Lead, error) {
	records, err := r.table.list(ctx)
	if err != nil {
		return nil, err
	}
	leads := make([]*entity.Lead, 0, len(records))
	for _, rec := range records {
		leads = append(leads, leadFromRecord(rec))
	}
	return leads, nil
}

// SetStatus touches only the status cell, so writing the same value twice is harmless.
func (r *LeadRepository) SetStatus(ctx context.Context, userID int64, status entity.LeadStatus) error {
	header, rec, ok, err := r.table.find(ctx, formatID(userID))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", entity.ErrLeadNotFound, userID)
	}
	return r.table.update(ctx, header, rec, map[string]string{"status": string(status)})
}

// HeaderWidth reports how many columns the Leads header currently has.
func (r *LeadRepository) HeaderWidth(ctx context.Context) (int, error) {
	header, err := r.table.readHeader(ctx)
	return len(header), err
}

func leadValues(l *entity.Lead) map[string]string {
	return map[string]string{
		"tg_id":        formatID(l.UserID),
		"username":     l.Username,
		"name":         l.Name,
		"phone":        l.Phone,
		"goal":         l.Goal,
		"level":        l.Level,
		"source":       l.Source,
		"status":       string(l.Status),
		"created_at":   entity.FormatTimestamp(l.CreatedAt),
		"last_contact": entity.FormatTimestamp(l.LastContactAt),
	}
}

func leadFromRecord(rec record) *entity.Lead {
	status, ok := entity.ParseLeadStatus(rec.get("status"))
	if !ok {
		status = entity.LeadStatus(strings.ToUpper(strings.TrimSpace(rec.get("status"))))
	}
	createdAt, _ := entity.ParseTimestamp(rec.get("created_at"))
	lastContact, _ := entity.ParseTimestamp(rec.get("last_contact"))

	return &entity.Lead{
		UserID:        parseID(rec.get("tg_id")),
		Username:      rec.get("username"),
		Name:          rec.get("name"),
		Phone:         rec.get("phone"),
		Goal:          rec.get("goal"),
		Level:         rec.get("level"),
		Source:        rec.get("source"),
		Status:        status,
		CreatedAt:     createdAt,
		LastContactAt: lastContact,
	}
}
