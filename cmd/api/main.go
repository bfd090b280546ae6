package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rentfleet/rentfleet-backend/api/routes"
	cartsvc "github.com/rentfleet/rentfleet-backend/internal/cart"
	checkoutsvc "github.com/rentfleet/rentfleet-backend/internal/checkout"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
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
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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
	fleetRepo := fleet.NewRepository(dbClient.DB())
	resRepo := ressvc.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	payRepo := paysvc.NewRepository(dbClient.DB())

	notifier := notifications.NewService(usersRepo, mailer, logg)
	rebalancer := fleet.NewRebalancer(dbClient, logg)

	usersService := userssvc.NewService(usersRepo, cfg.JWT, cfg.Password, clk, logg)
	coordinator := paysvc.NewCoordinator(runner, payRepo, resRepo, publisher, notifier, clk, cfg.Payments, logg)
	reservationsService := ressvc.NewService(runner, resRepo, fleetRepo, coordinator, rebalancer, publisher, notifier, clk, logg)
	searchService := fleet.NewSearchService(fleetRepo, resRepo, cartRepo, logg)
	cartService := cartsvc.NewService(dbClient, cartRepo, fleetRepo, resRepo, clk, logg)
	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	checkoutService := checkoutsvc.NewService(runner, cartRepo, fleetRepo, resRepo, coordinator, publisher, notifier, clk, checkoutMetrics, logg)

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
		Users:        usersService,
		Fleet:        fleetRepo,
		Search:       searchService,
		Cart:         cartService,
		Checkout:     checkoutService,
		Reservations: reservationsService,
		Payments:     coordinator,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down api server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
