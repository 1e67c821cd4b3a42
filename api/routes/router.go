package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crective/ggp-backend/api/controllers"
	"github.com/crective/ggp-backend/api/middleware"
	"github.com/crective/ggp-backend/internal/ledger"
	"github.com/crective/ggp-backend/internal/orders"
	"github.com/crective/ggp-backend/internal/settlement"
	cryptomuswebhook "github.com/crective/ggp-backend/internal/webhooks/cryptomus"
	"github.com/crective/ggp-backend/internal/withdrawals"
	"github.com/crective/ggp-backend/pkg/config"
	"github.com/crective/ggp-backend/pkg/cryptomus"
	"github.com/crective/ggp-backend/pkg/db"
	"github.com/crective/ggp-backend/pkg/logger"
	"github.com/crective/ggp-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	gatewayClient *cryptomus.Client,
	ordersService orders.Service,
	ledgerService ledger.Service,
	settlementService settlement.Service,
	withdrawalsService withdrawals.Service,
	webhookService cryptomuswebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	// The provider authenticates callbacks by signature, not by bearer token,
	// so this route sits outside the auth stack behind a per-IP throttle.
	r.With(middleware.RateLimit("cryptomus_callback", redisClient, cfg.RateLimit.WebhookLimit, cfg.RateLimit.WebhookWindow, logg)).
		Post("/v1/orders/cryptomus-callback", controllers.CryptomusCallback(webhookService, logg))

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersService, logg))
			r.Get("/{orderId}/invoice", controllers.GetOrderInvoice(ordersService, logg))
			r.With(middleware.RequireSettler(logg)).Post("/{orderId}/accept", controllers.AcceptOrder(settlementService, logg))
			r.With(middleware.RequireSettler(logg)).Post("/{orderId}/reject", controllers.RejectOrder(settlementService, logg))
			r.With(middleware.RequireSettler(logg)).Post("/{orderId}/submit", controllers.SubmitOrder(settlementService, logg))
		})

		r.With(middleware.RequireSettler(logg)).Get("/publisher/orders", controllers.ListPublisherOrders(ordersService, logg))
		r.With(middleware.RequireSettler(logg)).Get("/publisher/wallet", controllers.PublisherWalletEntries(ledgerService, logg))
		r.Get("/payment/services", controllers.ListPaymentServices(gatewayClient, logg))
	})

	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireStaff(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Post("/bulk-accept", controllers.BulkAcceptOrders(settlementService, logg))
			r.Post("/bulk-reject", controllers.BulkRejectOrders(settlementService, logg))
			r.Delete("/bulk", controllers.BulkDeleteOrders(ordersService, logg))
			r.Delete("/{orderId}", controllers.DeleteOrder(ordersService, logg))
		})

		r.Post("/withdrawals/payout", controllers.CreatePayout(withdrawalsService, logg))
	})

	return r
}
