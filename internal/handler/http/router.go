package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/metrics"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

type Tokens interface {
	TokenIssuer
	TokenParser
}

type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Logger   zerolog.Logger
	Users    user.Service
	Products product.Service
	Cart     cart.Service
	Orders   order.Service
	Razorpay payment.RazorpayGateway
	Stripe   payment.StripeGateway
	Tokens   Tokens
	Metrics  *metrics.Metrics
	Health   HealthChecker
}

type HealthResponse struct {
	Message  string `json:"message"`
	Database string `json:"database,omitempty"`
}

// NewRouter assembles the /api tree and the /metrics endpoint.
func NewRouter(deps Dependencies) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(RequestLogger(deps.Logger)...)
	router.Use(middleware.Recoverer)
	router.Use(Tracing)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	authn := NewAuthenticator(deps.Tokens, deps.Users).Authenticate

	router.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(30 * time.Second))
		api.Get("/health", healthHandler(deps.Health))

		NewAuthHandler(deps.Users, deps.Tokens).RegisterRoutes(api, authn)
		NewProductHandler(deps.Products).RegisterRoutes(api, authn, RequireAdmin)

		api.Group(func(r chi.Router) {
			r.Use(authn)
			NewCartHandler(deps.Cart).RegisterRoutes(r)
			NewOrderHandler(deps.Orders).RegisterRoutes(r, RequireAdmin)
			NewPaymentHandler(deps.Razorpay, deps.Stripe).RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				NewUserHandler(deps.Users).RegisterRoutes(r)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, r, http.StatusNotFound, "not_found", "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return router
}

func healthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			respondWithJSON(w, r, http.StatusOK, HealthResponse{Message: "Server is running!"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("health check: database unreachable")
			respondWithError(w, r, http.StatusServiceUnavailable, "database_unavailable", "Database unavailable")
			return
		}
		respondWithJSON(w, r, http.StatusOK, HealthResponse{Message: "Server is running!", Database: "ok"})
	}
}
