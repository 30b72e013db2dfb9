package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiresSessions(t *testing.T) {
	current := now
	store := NewMemoryStore(time.Hour).WithClock(func() time.Time { return current })
	ctx := context.Background()

	s := Start(1, SceneRegistration, current)
	require.NoError(t, store.Save(ctx, s))

	got, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StepRegName, got.Step)

	// callers get a copy
	got.Data[FieldName] = "changed"
	again, _, _ := store.Get(ctx, 1)
	assert.Empty(t, again.Get(FieldName))

	current = current.Add(61 * time.Minute)
	_, ok, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Start(1, ScenePayment, now)))
	require.NoError(t, store.Delete(ctx, 1))

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, time.Hour)
	ctx := context.Background()

	s := Start(5, SceneBroadcast, now)
	s.Data[FieldSegment] = "ACTIVE"
	s.Step = StepBcText
	require.NoError(t, store.Save(ctx, s))

	got, ok, err := store.Get(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StepBcText, got.Step)
	assert.Equal(t, "ACTIVE", got.Get(FieldSegment))
	assert.Equal(t, time.Hour, mr.TTL("session:5"))

	mr.FastForward(2 * time.Hour)
	_, ok, err = store.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, 5))
	_, ok, _ = store.Get(ctx, 5)
	assert.False(t, ok)
}
