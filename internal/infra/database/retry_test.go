package database_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/xavierca1/lead-engine/internal/entity"
	"github.com/xavierca1/lead-engine/internal/infra/database"
	"github.com/xavierca1/lead-engine/internal/infra/sheets"
)

func recordingPolicy(delays *[]time.Duration) database.RetryPolicy {
	p := database.DefaultRetryPolicy
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return p
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	store := sheets.NewMemory()
	store.FailNext("get", &googleapi.Error{Code: 503}, &googleapi.Error{Code: 429})

	var delays []time.Duration
	repo := database.NewLeadRepository(database.WithRetry(store, recordingPolicy(&delays)))

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 600 * time.Millisecond}, delays)
	assert.Equal(t, 3, store.Calls("get"))
}

func TestRetryLogsThroughPolicyLogger(t *testing.T) {
	store := sheets.NewMemory()
	store.FailNext("get", &googleapi.Error{Code: 502})

	var buf bytes.Buffer
	var delays []time.Duration
	policy := recordingPolicy(&delays)
	policy.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	_, err := database.NewLeadRepository(database.WithRetry(store, policy)).Get(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	assert.Contains(t, buf.String(), "storage call failed, retrying")
	assert.Contains(t, buf.String(), "attempt=1")
}

func TestRetryGivesUpAfterFourAttempts(t *testing.T) {
	store := sheets.NewMemory()
	for i := 0; i < 4; i++ {
		store.FailNext("get", &googleapi.Error{Code: 500})
	}

	var delays []time.Duration
	repo := database.NewLeadRepository(database.WithRetry(store, recordingPolicy(&delays)))

	_, err := repo.Get(context.Background(), 1)
	assert.ErrorIs(t, err, entity.ErrStorageUnavailable)
	assert.Equal(t, 4, store.Calls("get"))
	assert.Equal(t, []time.Duration{300 * time.Millisecond, 600 * time.Millisecond, 1200 * time.Millisecond}, delays)
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	store := sheets.NewMemory()
	store.FailNext("append", &googleapi.Error{Code: 403})

	var delays []time.Duration
	repo := database.NewLeadRepository(database.WithRetry(store, recordingPolicy(&delays)))

	err := repo.Upsert(context.Background(), newLead(1, "A", entity.StatusNew))
	assert.ErrorIs(t, err, entity.ErrStorageUnavailable)
	assert.Empty(t, delays)
	assert.Equal(t, 1, store.Calls("append"))
	// only the header made it to the sheet
	assert.Len(t, store.Rows(database.LeadsSheet), 1)
}

func TestRetryStopsWhenContextIsCancelled(t *testing.T) {
	store := sheets.NewMemory()
	store.FailNext("get", &googleapi.Error{Code: 503})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := database.NewLeadRepository(database.WithRetry(store, database.DefaultRetryPolicy))
	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, entity.ErrStorageUnavailable)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, store.Calls("get"))
}

func TestIsTransient(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, database.IsTransient(&googleapi.Error{Code: code}), "code %d", code)
	}
	assert.False(t, database.IsTransient(&googleapi.Error{Code: 400}))
	assert.False(t, database.IsTransient(errors.New("plain")))
	require.Equal(t, "A", database.ColumnLetter(0))
	require.Equal(t, "Z", database.ColumnLetter(25))
	require.Equal(t, "AA", database.ColumnLetter(26))
}
