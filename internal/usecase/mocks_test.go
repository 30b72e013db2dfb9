package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Get(ctx context.Context, userID int64) (*entity.Lead, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) ListByStatus(ctx context.Context, status entity.LeadStatus, limit int) ([]*entity.Lead, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListAll(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) SetStatus(ctx context.Context, userID int64, status entity.LeadStatus) error {
	args := m.Called(ctx, userID, status)
	return args.Error(0)
}

type MockTrialRepository struct {
	mock.Mock
}

func (m *MockTrialRepository) Append(ctx context.Context, trial *entity.Trial) error {
	args := m.Called(ctx, trial)
	return args.Error(0)
}

func (m *MockTrialRepository) ListInWindow(ctx context.Context, from, to time.Time) ([]*entity.Trial, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Trial), args.Error(1)
}

func (m *MockTrialRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Trial, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Trial), args.Error(1)
}

func (m *MockTrialRepository) MarkReminderSent(ctx context.Context, key entity.TrialKey, which entity.Reminder) error {
	args := m.Called(ctx, key, which)
	return args.Error(0)
}

func (m *MockTrialRepository) MarkAttended(ctx context.Context, key entity.TrialKey, note string) error {
	args := m.Called(ctx, key, note)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entity.Payment) (time.Time, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockPaymentRepository) Get(ctx context.Context, userID int64, submittedAt time.Time) (*entity.Payment, error) {
	args := m.Called(ctx, userID, submittedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPending(ctx context.Context) ([]*entity.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SetStatus(ctx context.Context, userID int64, submittedAt time.Time, status entity.PaymentStatus, verifierID int64) error {
	args := m.Called(ctx, userID, submittedAt, status, verifierID)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPaymentSubmitted(ctx context.Context, lead *entity.Lead, payment *entity.Payment) error {
	args := m.Called(ctx, lead, payment)
	return args.Error(0)
}

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(e queue.LeadEvent) bool { return e.Type == eventType && e.ID != "" })
}
