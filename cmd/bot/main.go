package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/lead-engine/internal/bot"
	"github.com/xavierca1/lead-engine/internal/config"
	"github.com/xavierca1/lead-engine/internal/dialog"
	"github.com/xavierca1/lead-engine/internal/infra/cache"
	"github.com/xavierca1/lead-engine/internal/infra/database"
	"github.com/xavierca1/lead-engine/internal/infra/http/handlers"
	"github.com/xavierca1/lead-engine/internal/infra/http/middleware"
	"github.com/xavierca1/lead-engine/internal/infra/integration/telegram"
	"github.com/xavierca1/lead-engine/internal/infra/mail"
	"github.com/xavierca1/lead-engine/internal/infra/queue"
	"github.com/xavierca1/lead-engine/internal/infra/sheets"
	"github.com/xavierca1/lead-engine/internal/infra/worker"
	"github.com/xavierca1/lead-engine/internal/ratelimit"
	"github.com/xavierca1/lead-engine/internal/usecase"
	"github.com/xavierca1/lead-engine/pkg/logger"
)

const (
	serviceName = "lead-engine"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(cfg.AppEnv, serviceName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("lead engine stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("lead engine stopped")
}

func run(parent context.Context, cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Storage
	sheetsClient, err := sheets.NewClient(ctx, cfg.SheetID, cfg.ServiceAccount)
	if err != nil {
		return err
	}
	policy := database.DefaultRetryPolicy
	policy.Logger = log
	store := database.WithRetry(sheetsClient, policy)

	leadRepo := database.NewLeadRepository(store)
	trialRepo := database.NewTrialRepository(store)
	paymentRepo := database.NewPaymentRepository(store)

	// Shared state: Redis when configured, process memory otherwise.
	var (
		rdb      *redis.Client
		limiter  ratelimit.Limiter
		sessions dialog.Store
	)
	if cfg.RedisAddr != "" {
		rdb, err = cache.OpenRedis(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisFixedWindow(rdb, cfg.RateLimit, cfg.RateWindow, log)
		sessions = dialog.NewRedisStore(rdb, cfg.SessionTTL)
		log.Info("using redis for rate limits and sessions", "addr", cfg.RedisAddr)
	} else {
		fw := ratelimit.NewFixedWindow(cfg.RateLimit, cfg.RateWindow)
		go fw.Run(ctx, time.Minute)
		limiter = fw
		sessions = dialog.NewMemoryStore(cfg.SessionTTL)
	}

	// Lifecycle events
	var (
		rabbitMQ *queue.RabbitMQ
		events   usecase.EventPublisher = queue.NoopProducer{}
		workers  sync.WaitGroup
	)
	if cfg.AMQPURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		events = queue.NewProducer(rabbitMQ.Ch)

		consumeCh, err := rabbitMQ.Conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open consumer channel: %w", err)
		}
		journal := queue.NewWorker(consumeCh, database.NewEventJournal(store), log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := journal.Start(ctx, queue.QueueName); err != nil {
				log.Error("event journal worker failed", "error", err)
			}
		}()
	}

	// Telegram
	tg, err := telegram.NewClient(cfg.BotToken, log)
	if err != nil {
		return err
	}
	messenger := bot.Messenger{Gateway: tg}

	admins := usecase.NewAdmins(cfg.AdminIDs)
	notifiers := []usecase.PaymentNotifier{bot.NewAdminNotifier(tg, admins, log)}
	if cfg.EmailEnabled() {
		notifiers = append(notifiers, mail.NewEmailNotifier(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}, cfg.AdminEmails, cfg.Location, log))
	}

	slot := usecase.TrialSlot{Location: cfg.Location, Weekday: cfg.TrialWeekday, Hour: cfg.TrialHour}

	b := bot.New(bot.Deps{
		Gateway:  tg,
		Sessions: sessions,
		Admins:   admins,
		Leads:    leadRepo,
		Trials:   trialRepo,
		Payments: paymentRepo,
		Health:   leadRepo,

		Register:      usecase.NewRegisterLeadUseCase(leadRepo, events, log),
		BookTrial:     usecase.NewBookTrialUseCase(leadRepo, trialRepo, events, cfg.MeetLink, slot, log),
		CompleteTrial: usecase.NewCompleteTrialUseCase(leadRepo, trialRepo, events, log),
		SubmitPayment: usecase.NewSubmitPaymentUseCase(leadRepo, paymentRepo, events, cfg.PaymentAmount, log, notifiers...),
		ReviewPayment: usecase.NewReviewPaymentUseCase(leadRepo, paymentRepo, events, log),
		Broadcast:     usecase.NewBroadcastUseCase(leadRepo, messenger, cfg.BroadcastDelay, log),
		JoinRequest:   usecase.NewJoinRequestUseCase(leadRepo),
	}, bot.Settings{
		GroupID:       cfg.GroupID,
		CardNumber:    cfg.CardNumber,
		PaymentAmount: cfg.PaymentAmount,
		Location:      cfg.Location,
	}, log)

	dispatcher := bot.NewDispatcher(b, limiter, bot.DefaultShards, log)
	dispatcher.Start(ctx)

	reminders := worker.NewReminderWorker(trialRepo, messenger, cfg.Location, cfg.ReminderTick, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		reminders.Start(ctx)
	}()

	// Ops server
	health := handlers.NewHealthHandler(version, map[string]handlers.Check{
		"storage": func(ctx context.Context) error {
			_, err := leadRepo.HeaderWidth(ctx)
			return err
		},
		"rabbitmq": rabbitCheck(rabbitMQ),
		"redis":    redisCheck(rdb),
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))
	r.Get("/healthz", health.Handle)
	r.Handle("/metrics", promhttp.Handler())
	if cfg.BotMode == config.ModeWebhook {
		r.Post("/telegram/webhook", handlers.NewWebhookHandler(cfg.WebhookSecret, dispatcher.Dispatch, log).Handle)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.Info("ops server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Updates
	pollErr := make(chan error, 1)
	pollDone := make(chan struct{})
	switch cfg.BotMode {
	case config.ModeWebhook:
		close(pollDone)
		if err := tg.SetWebhook(cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			cancel()
			_ = srv.Close()
			dispatcher.Stop()
			workers.Wait()
			return err
		}
		log.Info("webhook registered", "url", cfg.WebhookURL)
	default:
		if err := tg.DeleteWebhook(); err != nil {
			log.Warn("failed to delete webhook before polling", "error", err)
		}
		go func() {
			defer close(pollDone)
			pollErr <- tg.Poll(ctx, dispatcher.Dispatch)
		}()
	}

	log.Info("lead engine started", "mode", cfg.BotMode, "bot", tg.Username(), "version", version)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	case runErr = <-pollErr:
	}

	log.Info("shutting down")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(parent), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("ops server shutdown", "error", err)
	}

	// Nothing may enqueue once the shards are closed.
	<-pollDone
	dispatcher.Stop()
	b.Wait()
	workers.Wait()
	return runErr
}

func rabbitCheck(r *queue.RabbitMQ) handlers.Check {
	if r == nil {
		return nil
	}
	return func(context.Context) error {
		if !r.Healthy() {
			return errors.New("connection closed")
		}
		return nil
	}
}

func redisCheck(rdb *redis.Client) handlers.Check {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
