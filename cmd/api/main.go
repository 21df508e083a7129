package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fooddash/fooddash-backend/api/controllers"
	"github.com/fooddash/fooddash-backend/api/routes"
	cartsvc "github.com/fooddash/fooddash-backend/internal/cart"
	"github.com/fooddash/fooddash-backend/internal/catalog"
	checkoutsvc "github.com/fooddash/fooddash-backend/internal/checkout"
	"github.com/fooddash/fooddash-backend/internal/ledger"
	"github.com/fooddash/fooddash-backend/internal/notifications"
	ordersvc "github.com/fooddash/fooddash-backend/internal/orders"
	"github.com/fooddash/fooddash-backend/pkg/config"
	"github.com/fooddash/fooddash-backend/pkg/cosmic"
	"github.com/fooddash/fooddash-backend/pkg/db"
	"github.com/fooddash/fooddash-backend/pkg/email"
	"github.com/fooddash/fooddash-backend/pkg/instance"
	"github.com/fooddash/fooddash-backend/pkg/logger"
	"github.com/fooddash/fooddash-backend/pkg/metrics"
	"github.com/fooddash/fooddash-backend/pkg/redis"
	"github.com/fooddash/fooddash-backend/pkg/stripe"
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

	cosmicClient, err := cosmic.NewClient(cfg.Cosmic, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create content client", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(cosmicClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerRepo, err := ledger.NewRepository(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order ledger", err)
		os.Exit(1)
	}

	orderService, err := ordersvc.NewService(cosmicClient, ledgerRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	// Confirmation email is best effort. Without a Resend key the checkout
	// still runs, it just skips the send.
	var notifyService notifications.Service
	if emailClient, err := email.NewClient(cfg.Resend); err != nil {
		logg.Warn(context.Background(), "email sender not configured, order confirmations disabled")
	} else if notifyService, err = notifications.NewService(emailClient, logg); err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	checkoutService, err := checkoutsvc.NewService(
		stripe.NewIntentClient(stripeClient),
		orderService,
		notifyService,
		cfg.Checkout,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	calculator := cartsvc.NewCalculator(cfg.Checkout)
	carts := func(ctx context.Context, token string) *cartsvc.Store {
		strategy, err := cartsvc.NewRedisStrategy(redisClient, cfg.Cart.StorageKey, token, cfg.Cart.TTL)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "cart_token", token), "falling back to in-memory cart storage")
			return cartsvc.NewStore(ctx, cartsvc.NewMemoryStrategy(), logg, cfg.Cart.MaxItemQuantity)
		}
		return cartsvc.NewStore(ctx, strategy, logg, cfg.Cart.MaxItemQuantity)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Redis: redisClient,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"cosmic":   cosmicClient,
			},
			Carts:      carts,
			Calculator: calculator,
			Catalog:    catalogService,
			Checkout:   checkoutService,
			Orders:     orderService,
			MetricsReg: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
