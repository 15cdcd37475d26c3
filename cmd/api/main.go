package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/aquaflow-backend/api/controllers"
	"github.com/angelmondragon/aquaflow-backend/api/cookies"
	"github.com/angelmondragon/aquaflow-backend/api/middleware"
	"github.com/angelmondragon/aquaflow-backend/api/routes"
	"github.com/angelmondragon/aquaflow-backend/internal/adminauth"
	"github.com/angelmondragon/aquaflow-backend/internal/auth"
	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/checkout"
	"github.com/angelmondragon/aquaflow-backend/internal/customers"
	"github.com/angelmondragon/aquaflow-backend/internal/notifications"
	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/internal/plans"
	"github.com/angelmondragon/aquaflow-backend/internal/pricing"
	"github.com/angelmondragon/aquaflow-backend/pkg/auth/session"
	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	"github.com/angelmondragon/aquaflow-backend/pkg/db"
	"github.com/angelmondragon/aquaflow-backend/pkg/firestore"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	"github.com/angelmondragon/aquaflow-backend/pkg/metrics"
	"github.com/angelmondragon/aquaflow-backend/pkg/migrate"
	"github.com/angelmondragon/aquaflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(context.Background(), logg, "failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal(ctx, logg, "failed to bootstrap database", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal(ctx, logg, "failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fatal(ctx, logg, "failed to bootstrap redis", err)
	}

	var (
		orderStore orders.Store
		fsClient   *gcfirestore.Client
	)
	if cfg.OrderStore.UsesFirestore() {
		fsClient, err = firestore.New(ctx, cfg.OrderStore, logg)
		if err != nil {
			fatal(ctx, logg, "failed to bootstrap firestore", err)
		}
		orderStore, err = orders.NewFirestoreStore(fsClient, cfg.OrderStore.FirestoreCollection)
		if err != nil {
			fatal(ctx, logg, "failed to create firestore order store", err)
		}
	} else {
		orderStore = orders.NewSQLStore(dbClient.DB())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		fatal(ctx, logg, "failed to create catalog service", err)
	}
	planService, err := plans.NewService(plans.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		fatal(ctx, logg, "failed to create plan service", err)
	}
	if cfg.FeatureFlags.SeedDefaults {
		seedDefaults(ctx, logg, catalogService, planService)
	}

	buckets, err := pricing.ParseShippingBuckets(cfg.Storefront.ShippingBuckets)
	if err != nil {
		fatal(ctx, logg, "invalid shipping buckets", err)
	}
	cartStore, err := cart.NewRedisStore(redisClient, cfg.Redis.CartTTL, redis.IsNil)
	if err != nil {
		fatal(ctx, logg, "failed to create cart store", err)
	}
	cartService, err := cart.NewService(cartStore, catalogService, planService, pricing.Settings{
		Buckets: buckets,
		Coupons: cfg.Storefront.Coupons,
	}, logg)
	if err != nil {
		fatal(ctx, logg, "failed to create cart service", err)
	}

	notifier := notifierFor(ctx, cfg, logg)
	dispatcher, err := notifications.NewDispatcher(notifier, logg, storefrontMetrics, cfg.Notifications.SendTimeout)
	if err != nil {
		fatal(ctx, logg, "failed to create notification dispatcher", err)
	}

	checkoutService, err := checkout.NewService(cartService, planService, orderStore, dispatcher, storefrontMetrics, checkout.NewTracker(cfg.App.CheckoutConfirmationTTL, nil), logg, checkout.Options{
		SettleDelay:   cfg.App.CheckoutSettleDelay,
		DeliverySlots: cfg.Storefront.DeliverySlots,
		Location:      cfg.App.Location(),
	})
	if err != nil {
		fatal(ctx, logg, "failed to create checkout service", err)
	}

	orderService, err := orders.NewService(orderStore, logg)
	if err != nil {
		fatal(ctx, logg, "failed to create order service", err)
	}
	customerService, err := customers.NewService(orderService)
	if err != nil {
		fatal(ctx, logg, "failed to create customer service", err)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.Admin)
	if err != nil {
		fatal(ctx, logg, "failed to create session manager", err)
	}
	adminService, err := adminauth.NewService(cfg.Admin, sessionManager, redisClient, logg)
	if err != nil {
		fatal(ctx, logg, "failed to create admin auth service", err)
	}

	codec, err := cookies.NewCodec(cfg.Cookies)
	if err != nil {
		fatal(ctx, logg, "invalid cookie keys", err)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.App.TrustedProxies)
	if err != nil {
		fatal(ctx, logg, "invalid trusted proxies", err)
	}

	router := routes.NewRouter(cfg, logg, routes.Deps{
		Catalog:      catalogService,
		Plans:        planService,
		Carts:        cartService,
		Checkout:     checkoutService,
		Payments:     checkout.NewPayments(cfg.Storefront, logg),
		Orders:       orderService,
		Customers:    customerService,
		AdminAuth:    adminService,
		CustomerAuth: auth.NewUnavailable(),
		Cookies:      codec,
		Idempotency:  redisClient,
		Counters:     redisClient,
		Health: map[string]controllers.Pinger{
			"database":    dbClient,
			"redis":       redisClient,
			"order_store": orderStore,
		},
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		TrustedProxies: proxies,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":        addr,
		"order_store": cfg.OrderStore.Backend,
		"emailjs":     cfg.Notifications.Enabled(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, dispatcher.Drain(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if fsClient != nil {
		closeErr = multierr.Append(closeErr, fsClient.Close())
	}
	if closeErr != nil {
		logg.Error(ctx, "unclean shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

type seeder interface {
	SeedIfEmpty(ctx context.Context) (bool, error)
}

func seedDefaults(ctx context.Context, logg *logger.Logger, targets ...seeder) {
	for _, target := range targets {
		seeded, err := target.SeedIfEmpty(ctx)
		if err != nil {
			fatal(ctx, logg, "failed to seed defaults", err)
		}
		if seeded {
			logg.Info(ctx, "seeded default catalog data")
		}
	}
}

func notifierFor(ctx context.Context, cfg *config.Config, logg *logger.Logger) notifications.Notifier {
	if !cfg.Notifications.Enabled() {
		logg.Warn(ctx, "emailjs not configured, order notifications will only be logged")
		return notifications.NewLogNotifier(logg)
	}
	client, err := notifications.NewEmailJSClient(cfg.Notifications, &http.Client{Timeout: cfg.Notifications.SendTimeout})
	if err != nil {
		fatal(ctx, logg, "failed to create emailjs client", err)
	}
	return client
}

func fatal(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
