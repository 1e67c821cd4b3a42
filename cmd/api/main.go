package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crective/ggp-backend/api/routes"
	"github.com/crective/ggp-backend/internal/invoices"
	"github.com/crective/ggp-backend/internal/ledger"
	"github.com/crective/ggp-backend/internal/notifications"
	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/internal/products"
	"github.com/crective/ggp-backend/internal/settlement"
	"github.com/crective/ggp-backend/internal/users"
	cryptomuswebhook "github.com/crective/ggp-backend/internal/webhooks/cryptomus"
	"github.com/crective/ggp-backend/internal/withdrawals"
	"github.com/crective/ggp-backend/pkg/config"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/db"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/mail"
	"github.com/crective/ggp-backend/pkg/metrics"
	"github.com/crective/ggp-backend/pkg/migrate"
	"github.com/crective/ggp-backend/pkg/redis"
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

	gatewayClient, err := cryptomus.NewClient(context.Background(), cfg.Cryptomus, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway client", err)
		os.Exit(1)
	}

	// Mail is best effort; without an API key the notification service still
	// records rows, it just skips delivery.
	var sender mail.Sender
	if mailClient, mailErr := mail.NewClient(cfg.Mail, logg); mailErr != nil {
		logg.Warn(context.Background(), "mail client disabled: "+mailErr.Error())
	} else {
		sender = mailClient
	}

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	invoicesRepo := invoices.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notificationsRepo, sender, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		ordersRepo,
		invoicesRepo,
		usersRepo,
		productsRepo,
		dbClient,
		gatewayClient,
		notificationsService,
		orderMetrics,
		logg,
		cfg.Orders,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(
		ordersRepo,
		invoicesRepo,
		usersRepo,
		ledgerService,
		dbClient,
		notificationsService,
		orderMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	withdrawalsService, err := withdrawals.NewService(usersRepo, ledgerService, dbClient, gatewayClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create withdrawals service", err)
		os.Exit(1)
	}

	webhookService, err := cryptomuswebhook.NewService(ordersRepo, cfg.Cryptomus.PaymentKey, orderMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
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
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			gatewayClient,
			ordersService,
			ledgerService,
			settlementService,
			withdrawalsService,
			webhookService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
