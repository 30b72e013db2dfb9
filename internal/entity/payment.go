package entity

import (
	"context"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentVerified PaymentStatus = "VERIFIED"
	PaymentRejected PaymentStatus = "REJECTED"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return PaymentPending, true
	case "VERIFIED", "PAID_VERIFIED":
		return PaymentVerified, true
	case "REJECTED":
		return PaymentRejected, true
	}
	return "", false
}

type ProofKind string

const (
	ProofPhoto    ProofKind = "photo"
	ProofDocument ProofKind = "document"
)

type Proof struct {
	FileID string    `json:"proof_file_id"`
	Kind   ProofKind `json:"proof_type"`
}

// Payment is keyed by (UserID, SubmittedAt); every proof gets its own row.
type Payment struct {
	UserID      int64         `json:"tg_id"`
	Amount      int64         `json:"amount"`
	Proof       Proof         `json:"proof"`
	SubmittedAt time.Time     `json:"submitted_at"`
	Status      PaymentStatus `json:"status"`
	VerifiedBy  int64         `json:"verified_by,omitempty"`
	VerifiedAt  time.Time     `json:"verified_at,omitempty"`
}

type PaymentRepository interface {
	// Create stamps SubmittedAt, stores the row as PENDING and returns the stamp.
	Create(ctx context.Context, payment *Payment) (time.Time, error)
	Get(ctx context.Context, userID int64, submittedAt time.Time) (*Payment, error)
	ListPending(ctx context.Context) ([]*Payment, error)
	SetStatus(ctx context.Context, userID int64, submittedAt time.Time, status PaymentStatus, verifierID int64) error
}

func (p *Payment) IsPending() bool {
	return p.Status == PaymentPending
}
