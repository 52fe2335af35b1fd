package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/trongle278/seasondecorbe-sub000/api/routes"
	"github.com/trongle278/seasondecorbe-sub000/internal/accounts"
	"github.com/trongle278/seasondecorbe-sub000/internal/address"
	"github.com/trongle278/seasondecorbe-sub000/internal/booking"
	"github.com/trongle278/seasondecorbe-sub000/internal/decorservices"
	"github.com/trongle278/seasondecorbe-sub000/internal/notifications"
	"github.com/trongle278/seasondecorbe-sub000/internal/quotation"
	"github.com/trongle278/seasondecorbe-sub000/internal/settings"
	"github.com/trongle278/seasondecorbe-sub000/internal/wallet"
	"github.com/trongle278/seasondecorbe-sub000/pkg/config"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
	"github.com/trongle278/seasondecorbe-sub000/pkg/metrics"
	"github.com/trongle278/seasondecorbe-sub000/pkg/migrate"
	"github.com/trongle278/seasondecorbe-sub000/pkg/redis"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	settingsService, err := settings.NewService(
		settings.NewRepository(dbClient.DB()),
		redisClient,
		cfg.Settings.CommissionRateCacheTTL,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	dispatcher := notifications.NewDispatcher(notificationsRepo, logg)

	walletService, err := wallet.NewService(
		wallet.NewRepository(dbClient.DB()),
		dbClient,
		cfg.Ledger,
		ledgerMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	quotationService, err := quotation.NewService(quotation.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotation service", err)
		os.Exit(1)
	}

	bookingService, err := booking.NewService(booking.Deps{
		Repo:      booking.NewRepository(dbClient.DB()),
		Accounts:  accounts.NewRepository(dbClient.DB()),
		Addresses: address.NewRepository(dbClient.DB()),
		Services:  decorservices.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Ledger:    walletService,
		Settings:  settingsService,
		Notifier:  dispatcher,
		Config:    cfg.Booking,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			bookingService,
			quotationService,
			walletService,
			settingsService,
			notificationsRepo,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
