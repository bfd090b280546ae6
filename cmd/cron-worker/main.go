package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rentfleet/rentfleet-backend/internal/cron"
	"github.com/rentfleet/rentfleet-backend/internal/notifications"
	paysvc "github.com/rentfleet/rentfleet-backend/internal/payments"
	ressvc "github.com/rentfleet/rentfleet-backend/internal/reservations"
	userssvc "github.com/rentfleet/rentfleet-backend/internal/users"
	"github.com/rentfleet/rentfleet-backend/pkg/broadcast"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	"github.com/rentfleet/rentfleet-backend/pkg/config"
	"github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/effects"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
	"github.com/rentfleet/rentfleet-backend/pkg/metrics"
	"github.com/rentfleet/rentfleet-backend/pkg/migrate"
	"github.com/rentfleet/rentfleet-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	clk := clock.System{}
	runner := effects.NewRunner(dbClient, logg)
	publisher := broadcast.NewRedisPublisher(redisClient.Raw())

	var mailer notifications.Mailer
	if cfg.Mail.SendgridAPIKey != "" {
		mailer, err = notifications.NewSendgridMailer(cfg.Mail)
		if err != nil {
			logg.Error(context.Background(), "failed to create sendgrid mailer", err)
			os.Exit(1)
		}
	} else {
		mailer = notifications.NewLogMailer(logg)
	}

	usersRepo := userssvc.NewRepository(dbClient.DB())
	resRepo := ressvc.NewRepository(dbClient.DB())
	payRepo := paysvc.NewRepository(dbClient.DB())
	notifier := notifications.NewService(usersRepo, mailer, logg)
	coordinator := paysvc.NewCoordinator(runner, payRepo, resRepo, publisher, notifier, clk, cfg.Payments, logg)

	intentExpiryJob, err := cron.NewIntentExpiryJob(cron.IntentExpiryJobParams{
		Logger:   logg,
		Payments: coordinator,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create intent expiry job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.Cron.LockKey), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(intentExpiryJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
