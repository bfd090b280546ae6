package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rentfleet/rentfleet-backend/api/controllers"
	"github.com/rentfleet/rentfleet-backend/api/middleware"
	cartsvc "github.com/rentfleet/rentfleet-backend/internal/cart"
	checkoutsvc "github.com/rentfleet/rentfleet-backend/internal/checkout"
	"github.com/rentfleet/rentfleet-backend/internal/fleet"
	paysvc "github.com/rentfleet/rentfleet-backend/internal/payments"
	ressvc "github.com/rentfleet/rentfleet-backend/internal/reservations"
	userssvc "github.com/rentfleet/rentfleet-backend/internal/users"
	"github.com/rentfleet/rentfleet-backend/pkg/config"
	"github.com/rentfleet/rentfleet-backend/pkg/db"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
	"github.com/rentfleet/rentfleet-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Users        *userssvc.Service
	Fleet        *fleet.Repository
	Search       *fleet.SearchService
	Cart         *cartsvc.Service
	Checkout     *checkoutsvc.Service
	Reservations *ressvc.Service
	Payments     *paysvc.Coordinator
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.With(middleware.OptionalAuth(cfg.JWT, logg)).Get("/search", controllers.Search(svcs.Search, logg))
		r.Get("/locations", controllers.ListLocations(svcs.Fleet, logg))
		r.Get("/vehicles/{vehicleID}", controllers.GetVehicle(svcs.Fleet, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(svcs.Users, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.Register(svcs.Users, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/me", controllers.Me(svcs.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.ListGroups(svcs.Reservations, logg))
			r.Get("/{groupID}", controllers.GetGroup(svcs.Reservations, logg))
			r.Post("/{groupID}/transition", controllers.TransitionGroup(svcs.Reservations, logg))
			r.Post("/{groupID}/vehicles", controllers.AddGroupVehicle(svcs.Reservations, logg))
			r.Put("/members/{reservationID}", controllers.EditReservation(svcs.Reservations, logg))
			r.Delete("/members/{reservationID}", controllers.RemoveReservation(svcs.Reservations, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/groups/{groupID}/intent", controllers.GetPaymentIntent(svcs.Payments, logg))
			r.Post("/confirm", controllers.ConfirmPayment(svcs.Payments, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))

			r.Route("/fleet", func(r chi.Router) {
				r.Post("/vehicles", controllers.CreateVehicle(svcs.Fleet, logg))
				r.Post("/vehicles/{vehicleID}/pickup-locations", controllers.AddPickupLocation(svcs.Fleet, logg))
				r.Post("/vehicles/{vehicleID}/return-locations", controllers.AddReturnLocation(svcs.Fleet, logg))
				r.Post("/locations", controllers.CreateLocation(svcs.Fleet, logg))
			})
		})
	})

	return r
}
