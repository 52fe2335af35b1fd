package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trongle278/seasondecorbe-sub000/api/controllers"
	"github.com/trongle278/seasondecorbe-sub000/api/middleware"
	"github.com/trongle278/seasondecorbe-sub000/internal/booking"
	"github.com/trongle278/seasondecorbe-sub000/internal/notifications"
	"github.com/trongle278/seasondecorbe-sub000/internal/quotation"
	"github.com/trongle278/seasondecorbe-sub000/internal/settings"
	"github.com/trongle278/seasondecorbe-sub000/internal/wallet"
	"github.com/trongle278/seasondecorbe-sub000/pkg/config"
	"github.com/trongle278/seasondecorbe-sub000/pkg/db"
	"github.com/trongle278/seasondecorbe-sub000/pkg/logger"
	"github.com/trongle278/seasondecorbe-sub000/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	bookingService booking.Service,
	quotationService quotation.Service,
	walletService wallet.Service,
	settingsService settings.Service,
	notificationsRepo notifications.Repository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", controllers.CreateBooking(bookingService, logg))
			r.Get("/", controllers.ListBookings(bookingService, logg))
			r.Get("/{code}", controllers.GetBooking(bookingService, logg))
			r.Patch("/{code}", controllers.UpdateBooking(bookingService, logg))
			r.Post("/{code}/advance", controllers.AdvanceBooking(bookingService, logg))
			r.Post("/{code}/deposit", controllers.DepositBooking(bookingService, logg))
			r.Post("/{code}/final-payment", controllers.FinalPayBooking(bookingService, logg))
			r.Post("/{code}/cancellation", controllers.RequestCancellation(bookingService, logg))
			r.Post("/{code}/cancellation/approve", controllers.ApproveCancellation(bookingService, logg))
			r.Post("/{code}/cancellation/revoke", controllers.RevokeCancellation(bookingService, logg))
			r.Post("/{code}/reject", controllers.RejectBooking(bookingService, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", controllers.CreateQuotation(quotationService, logg))
			r.Get("/{code}", controllers.GetQuotation(quotationService, logg))
			r.Post("/{code}/confirm", controllers.ConfirmQuotation(quotationService, logg))
			r.Post("/{code}/deny", controllers.DenyQuotation(quotationService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.GetWallet(walletService, logg))
			r.Get("/transactions", controllers.ListWalletTransactions(walletService, logg))
			r.Post("/topup", controllers.TopUpWallet(walletService, logg))
			r.Post("/refund", controllers.RefundBooking(walletService, logg))
			r.Post("/order-payment", controllers.PayOrder(walletService, settingsService, logg))
		})

		r.Get("/notifications", controllers.ListNotifications(notificationsRepo, logg))
	})

	return r
}
