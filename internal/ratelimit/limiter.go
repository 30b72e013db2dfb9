package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultLimit  = 6
	DefaultWindow = 10 * time.Second
)

// Limiter admits or drops inbound events per user.
type Limiter interface {
	Allow(ctx context.Context, userID int64) bool
}

type bucket struct {
	count int
	start time.Time
}

// FixedWindow counts events per user in windows that open on the first event
// and last Window. The event that would exceed Limit inside a window is dropped.
type FixedWindow struct {
	mu      sync.Mutex
	windows map[int64]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindow{
		windows: make(map[int64]*bucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (l *FixedWindow) WithClock(now func() time.Time) *FixedWindow {
	l.now = now
	return l
}

func (l *FixedWindow) Allow(_ context.Context, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok || now.Sub(w.start) > l.window {
		l.windows[userID] = &bucket{count: 1, start: now}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Cleanup forgets users whose window closed. It returns how many were removed.
func (l *FixedWindow) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, w := range l.windows {
		if now.Sub(w.start) > l.window {
			delete(l.windows, id)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (l *FixedWindow) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}
