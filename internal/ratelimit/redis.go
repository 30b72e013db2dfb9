package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] = counter key, ARGV[1] = window in ms.
// The first hit of a window sets its expiry, so the window opens on the first event.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 or redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisFixedWindow shares the fixed window counters between processes.
type RedisFixedWindow struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewRedisFixedWindow(rdb *redis.Client, limit int, window time.Duration, logger *slog.Logger) *RedisFixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisFixedWindow{rdb: rdb, prefix: "ratelimit:", limit: limit, window: window, logger: logger}
}

// Allow fails open: when Redis cannot be reached the event is admitted.
func (l *RedisFixedWindow) Allow(ctx context.Context, userID int64) bool {
	key := fmt.Sprintf("%s%d", l.prefix, userID)
	n, err := fixedWindowScript.Run(ctx, l.rdb, []string{key}, l.window.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, admitting event", "tg_id", userID, "error", err)
		return true
	}
	return n <= l.limit
}
