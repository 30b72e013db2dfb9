package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xavierca1/lead-engine/internal/entity"
)

type PaymentRepository struct {
	table *table
	Now   func() time.Time
}

func NewPaymentRepository(store Storage) *PaymentRepository {
	return &PaymentRepository{
		table: newTable(store, PaymentsSheet, PaymentColumns, func(v map[string]string) string {
			return paymentKey(parseID(v["tg_id"]), v["submitted_at"])
		}),
		Now: time.Now,
	}
}

func paymentKey(userID int64, submittedAt string) string {
	if userID == 0 {
		return ""
	}
	if t, err := entity.ParseTimestamp(strings.TrimSpace(submittedAt)); err == nil && !t.IsZero() {
		submittedAt = entity.FormatTimestamp(t)
	}
	return fmt.Sprintf("%d|%s", userID, submittedAt)
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) (time.Time, error) {
	payment.SubmittedAt = entity.Stamp(r.Now())
	payment.Status = entity.PaymentPending
	payment.VerifiedBy = 0
	payment.VerifiedAt = time.Time{}

	if _, err := r.table.append(ctx, paymentValues(payment)); err != nil {
		return time.Time{}, err
	}
	return payment.SubmittedAt, nil
}

func (r *PaymentRepository) Get(ctx context.Context, userID int64, submittedAt time.Time) (*entity.Payment, error) {
	_, rec, ok, err := r.table.find(ctx, paymentKey(userID, entity.FormatTimestamp(submittedAt)))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d at %s", entity.ErrPaymentNotFound, userID, entity.FormatTimestamp(submittedAt))
	}
	return paymentFromRecord(rec), nil
}

func (r *PaymentRepository) ListPending(ctx context.Context) ([]*entity.Payment, error) {
	records, err := r.table.list(ctx)
	if err != nil {
		return nil, err
	}

	var out []*entity.Payment
	for _, rec := range records {
		p := paymentFromRecord(rec)
		if p.IsPending() {
			out = append(out, p)
		}
	}
	return out, nil
}

// SetStatus refuses to touch a row that is no longer PENDING: a reviewed proof is final.
func (r *PaymentRepository) SetStatus(ctx context.Context, userID int64, submittedAt time.Time, status entity.PaymentStatus, verifierID int64) error {
	header, rec, ok, err := r.table.find(ctx, paymentKey(userID, entity.FormatTimestamp(submittedAt)))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d at %s", entity.ErrPaymentNotFound, userID, entity.FormatTimestamp(submittedAt))
	}
	if current := paymentFromRecord(rec); !current.IsPending() {
		return fmt.Errorf("%w: status is %s", entity.ErrPaymentNotPending, current.Status)
	}

	values := map[string]string{"status": string(status)}
	if verifierID != 0 {
		values["verified_by"] = formatID(verifierID)
		values["verified_at"] = entity.FormatTimestamp(r.Now())
	}
	return r.table.update(ctx, header, rec, values)
}

func paymentValues(p *entity.Payment) map[string]string {
	return map[string]string{
		"tg_id":         formatID(p.UserID),
		"amount":        strconv.FormatInt(p.Amount, 10),
		"proof_file_id": p.Proof.FileID,
		"proof_type":    string(p.Proof.Kind),
		"submitted_at":  entity.FormatTimestamp(p.SubmittedAt),
		"status":        string(p.Status),
		"verified_by":   formatID(p.VerifiedBy),
		"verified_at":   entity.FormatTimestamp(p.VerifiedAt),
	}
}

func paymentFromRecord(rec record) *entity.Payment {
	status, ok := entity.ParsePaymentStatus(rec.get("status"))
	if !ok {
		status = entity.PaymentStatus(strings.ToUpper(strings.TrimSpace(rec.get("status"))))
	}
	amount, _ := strconv.ParseInt(strings.TrimSpace(rec.get("amount")), 10, 64)
	submittedAt, _ := entity.ParseTimestamp(strings.TrimSpace(rec.get("submitted_at")))
	verifiedAt, _ := entity.ParseTimestamp(strings.TrimSpace(rec.get("verified_at")))

	return &entity.Payment{
		UserID: parseID(rec.get("tg_id")),
		Amount: amount,
		Proof: entity.Proof{
			FileID: rec.get("proof_file_id"),
			Kind:   entity.ProofKind(rec.get("proof_type")),
		},
		SubmittedAt: submittedAt,
		Status:      status,
		VerifiedBy:  parseID(rec.get("verified_by")),
		VerifiedAt:  verifiedAt,
	}
}
