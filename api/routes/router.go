package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborlane/importdesk-backend/api/controllers"
	"github.com/harborlane/importdesk-backend/api/middleware"
	"github.com/harborlane/importdesk-backend/internal/auth"
	"github.com/harborlane/importdesk-backend/internal/deposits"
	"github.com/harborlane/importdesk-backend/internal/notifications"
	"github.com/harborlane/importdesk-backend/internal/orders"
	"github.com/harborlane/importdesk-backend/internal/quotes"
	"github.com/harborlane/importdesk-backend/internal/users"
	"github.com/harborlane/importdesk-backend/internal/vehicles"
	"github.com/harborlane/importdesk-backend/internal/workflow"
	"github.com/harborlane/importdesk-backend/pkg/config"
	"github.com/harborlane/importdesk-backend/pkg/db"
	"github.com/harborlane/importdesk-backend/pkg/logger"
	pkgredis "github.com/harborlane/importdesk-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Orders        orders.Service
	Deposits      deposits.Service
	Quotes        quotes.Service
	Vehicles      vehicles.Service
	Workflow      workflow.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	svcs Services,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/statuses", controllers.ListStatuses(svcs.Workflow, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Get("/{orderID}/vehicle", controllers.GetOrderVehicle(svcs.Orders, svcs.Vehicles, logg))
			r.Get("/{orderID}/deposits", controllers.ListOrderDeposits(svcs.Orders, svcs.Deposits, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
				r.Patch("/{orderID}", controllers.UpdateOrder(svcs.Orders, logg))
				r.Post("/{orderID}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
				r.Patch("/{orderID}/vehicle", controllers.UpdateOrderVehicle(svcs.Vehicles, logg))
				r.Post("/{orderID}/deposits", controllers.AddDeposit(svcs.Deposits, logg))
			})
		})

		r.Route("/deposits", func(r chi.Router) {
			r.With(middleware.RequireStaff(logg)).Post("/{depositID}/review", controllers.ReviewDeposit(svcs.Deposits, logg))
			r.With(middleware.RequireAdmin(logg)).Delete("/{depositID}", controllers.DeleteDeposit(svcs.Deposits, logg))
		})

		r.Route("/quote-requests", func(r chi.Router) {
			r.Post("/", controllers.SubmitQuote(svcs.Quotes, logg))
			r.Get("/", controllers.ListQuotes(svcs.Quotes, logg))
			r.Get("/{quoteID}", controllers.GetQuote(svcs.Quotes, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Patch("/{quoteID}", controllers.ReviewQuote(svcs.Quotes, logg))
				r.Post("/{quoteID}/convert", controllers.ConvertQuote(svcs.Quotes, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.CurrentUser(svcs.Users, logg))
			r.With(middleware.RequireStaff(logg)).Post("/", controllers.CreateCustomer(svcs.Users, logg))
		})
	})

	return r
}
