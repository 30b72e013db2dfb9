package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSessionTTL = 24 * time.Hour

// Store keeps one session per user. Get reports ok=false when there is none or
// it expired.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, bool, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore is the single-process session store.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemoryStore{sessions: make(map[int64]*Session), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(s.UpdatedAt) > m.ttl {
		delete(m.sessions, userID)
		return nil, false, nil
	}
	return s.clone(), true, nil
}

func (m *MemoryStore) Save(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := session.clone()
	s.UpdatedAt = m.now()
	m.sessions[session.UserID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// RedisStore keeps sessions as JSON so several processes can share them.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{rdb: rdb, prefix: "session:", ttl: ttl}
}

func (r *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s%d", r.prefix, userID)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session %d: %w", userID, err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decode session %d: %w", userID, err)
	}
	return &s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, session *Session) error {
	s := session.clone()
	s.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", session.UserID, err)
	}
	if err := r.rdb.Set(ctx, r.key(session.UserID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session %d: %w", session.UserID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	return r.rdb.Del(ctx, r.key(userID)).Err()
}

func (s *Session) clone() *Session {
	out := *s
	out.Data = make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		out.Data[k] = v
	}
	return &out
}
