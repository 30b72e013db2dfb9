package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/metrics"
)

// RetryPolicy retries transient storage failures with exponential backoff.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	Sleep     func(ctx context.Context, d time.Duration) error
	Logger    *slog.Logger
}

// DefaultRetryPolicy gives 4 attempts spaced 300ms, 600ms and 1200ms apart.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  4,
	BaseDelay: 300 * time.Millisecond,
}

var transientCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// IsTransient reports whether err is a throttling or server-side failure worth retrying.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return transientCodes[apiErr.Code]
	}
	return false
}

// Do runs fn under the policy. op labels metrics, target only shows up in logs and errors.
func (p RetryPolicy) Do(ctx context.Context, op, target string, fn func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == attempts {
			break
		}

		metrics.RecordStorageRetry(op)
		logger.Warn("storage call failed, retrying",
			"op", op,
			"target", target,
			"attempt", attempt,
			"delay", delay.String(),
			"error", err,
		)
		if serr := sleep(ctx, delay); serr != nil {
			err = serr
			break
		}
		delay *= 2
	}
	return fmt.Errorf("%w: %s %s: %w", entity.ErrStorageUnavailable, op, target, err)
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

type retryingStorage struct {
	next   Storage
	policy RetryPolicy
}

// WithRetry wraps every Storage primitive in policy. Failures that survive the
// policy come back as entity.ErrStorageUnavailable.
func WithRetry(next Storage, policy RetryPolicy) Storage {
	return &retryingStorage{next: next, policy: policy}
}

func (s *retryingStorage) Get(ctx context.Context, rng string) ([][]string, error) {
	var rows [][]string
	err := s.policy.Do(ctx, "get", rng, func() error {
		var err error
		rows, err = s.next.Get(ctx, rng)
		return err
	})
	return rows, err
}

func (s *retryingStorage) Append(ctx context.Context, sheet string, row []string) (int, error) {
	var n int
	err := s.policy.Do(ctx, "append", sheet, func() error {
		var err error
		n, err = s.next.Append(ctx, sheet, row)
		return err
	})
	return n, err
}

func (s *retryingStorage) Update(ctx context.Context, rng string, value string) error {
	return s.policy.Do(ctx, "update", rng, func() error {
		return s.next.Update(ctx, rng, value)
	})
}

func (s *retryingStorage) BatchUpdate(ctx context.Context, updates []CellUpdate) error {
	return s.policy.Do(ctx, "batch_update", fmt.Sprintf("%d ranges", len(updates)), func() error {
		return s.next.BatchUpdate(ctx, updates)
	})
}
