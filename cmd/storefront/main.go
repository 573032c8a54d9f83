package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/db"
	storehttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/logger"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/metrics"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

func main() {
	flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("Invalid server config")
	}

	logg := logger.New(cfg.App, "storefront")
	logg.Info().Str("env", cfg.App.Env).Msg("Storefront starting...")

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	m := metrics.New()

	userSvc := user.NewService(user.NewRepository(pg.DB))
	productSvc := product.NewService(product.NewRepository(pg.DB))
	cartSvc := cart.NewService(cart.NewRepository(pg.DB), productSvc)
	orderSvc := order.NewService(order.NewRepository(pg.DB), cartSvc, order.WithMetrics(m))

	router := storehttp.NewRouter(storehttp.Dependencies{
		Logger:   logg,
		Users:    userSvc,
		Products: productSvc,
		Cart:     cartSvc,
		Orders:   orderSvc,
		Razorpay: payment.NewRazorpay(cfg.Razorpay, payment.WithMetrics(m)),
		Stripe:   payment.NewStripe(cfg.Stripe, payment.WithMetrics(m)),
		Tokens:   auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics:  m,
		Health:   pg.DB,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logg.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logg.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("Server shutdown failed")
		return
	}

	logg.Info().Msg("Storefront stopped gracefully")
}
