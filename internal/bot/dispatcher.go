package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/xavierca1/lead-engine/internal/infra/metrics"
	"github.com/xavierca1/lead-engine/internal/ratelimit"
	"github.com/xavierca1/lead-engine/pkg/logger"
)

// Handler processes one update. Errors are logged by the dispatcher.
type Handler interface {
	Handle(ctx context.Context, u Update) error
}

type HandlerFunc func(ctx context.Context, u Update) error

func (f HandlerFunc) Handle(ctx context.Context, u Update) error {
	return f(ctx, u)
}

const (
	DefaultShards    = 16
	defaultQueueSize = 64
)

// Dispatcher runs updates of one user strictly in arrival order while updates
// of different users proceed in parallel. Each user is pinned to a shard and
// every shard is drained by a single goroutine.
type Dispatcher struct {
	handler Handler
	limiter ratelimit.Limiter
	logger  *slog.Logger

	shards []chan Update
	wg     sync.WaitGroup
	once   sync.Once
	cancel context.CancelFunc
}

func NewDispatcher(handler Handler, limiter ratelimit.Limiter, shards int, logger *slog.Logger) *Dispatcher {
	if shards <= 0 {
		shards = DefaultShards
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		handler: handler,
		limiter: limiter,
		logger:  logger,
		shards:  make([]chan Update, shards),
	}
	for i := range d.shards {
		d.shards[i] = make(chan Update, defaultQueueSize)
	}
	return d
}

// Start launches the shard goroutines. They exit after Stop once their queue is drained.
// Handlers get a context that keeps ctx's values but outlives its cancellation,
// so updates already queued at shutdown still reach storage. It is cancelled
// when Stop returns.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i, ch := range d.shards {
		d.wg.Add(1)
		go func(shard int, ch <-chan Update) {
			defer d.wg.Done()
			for u := range ch {
				d.process(ctx, u)
			}
			d.logger.Debug("dispatcher shard stopped", "shard", shard)
		}(i, ch)
	}
}

// Dispatch admits u through the limiter and queues it on its user's shard.
// It reports false when the update was dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, u Update) bool {
	if d.limiter != nil && u.UserID != 0 && !d.limiter.Allow(ctx, u.UserID) {
		metrics.RecordDropped()
		d.logger.Debug("update dropped by rate limiter", "update_id", u.ID, "user_id", u.UserID)
		return false
	}

	select {
	case d.shard(u.UserID) <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop closes the queues and waits for in-flight updates to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		for _, ch := range d.shards {
			close(ch)
		}
	})
	d.wg.Wait()
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Dispatcher) shard(userID int64) chan Update {
	n := userID % int64(len(d.shards))
	if n < 0 {
		n = -n
	}
	return d.shards[n]
}

func (d *Dispatcher) process(ctx context.Context, u Update) {
	log := d.logger.With("update_id", u.ID, "user_id", u.UserID, "kind", u.Kind)
	ctx = logger.With(ctx, log)
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			log.Error("update handler panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
		metrics.RecordUpdate(string(u.Kind), outcome)
	}()

	log.Info("update")
	if err := d.handler.Handle(ctx, u); err != nil {
		outcome = "error"
		log.Error("update failed", "error", err)
	}
}
