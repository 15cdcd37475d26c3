package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/aquaflow-backend/api/controllers"
	"github.com/angelmondragon/aquaflow-backend/api/cookies"
	"github.com/angelmondragon/aquaflow-backend/api/middleware"
	"github.com/angelmondragon/aquaflow-backend/internal/adminauth"
	"github.com/angelmondragon/aquaflow-backend/internal/auth"
	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/internal/catalog"
	"github.com/angelmondragon/aquaflow-backend/internal/checkout"
	"github.com/angelmondragon/aquaflow-backend/internal/customers"
	"github.com/angelmondragon/aquaflow-backend/internal/orders"
	"github.com/angelmondragon/aquaflow-backend/internal/plans"
	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/aquaflow-backend/pkg/redis"
)

type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Deps carries the services behind the HTTP surface.
type Deps struct {
	Catalog      catalog.Service
	Plans        plans.Service
	Carts        cart.Service
	Checkout     checkout.Service
	Payments     *checkout.Payments
	Orders       orders.Service
	Customers    *customers.Service
	AdminAuth    adminauth.Service
	CustomerAuth auth.Service
	Cookies      *cookies.Codec
	Idempotency  pkgredis.IdempotencyStore
	Counters     counterStore
	Health       map[string]controllers.Pinger
	Metrics      http.Handler

	// TrustedProxies may be nil, in which case forwarding headers are ignored.
	TrustedProxies *middleware.TrustedProxies
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.ClientAddress(deps.TrustedProxies),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	checkoutLimit := middleware.NewRateLimitPolicy("checkout", cfg.Storefront.CheckoutWindow, cfg.Storefront.CheckoutIPLimit, cfg.Storefront.CheckoutEmailLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.CatalogList(deps.Catalog, logg))
		r.Get("/products/{productId}", controllers.CatalogGet(deps.Catalog, logg))
		r.Get("/plans", controllers.PlanList(deps.Plans, logg))
		r.Get("/plans/{planId}", controllers.PlanGet(deps.Plans, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-in", controllers.AuthSignIn(deps.CustomerAuth, logg))
			r.Post("/sign-up", controllers.AuthSignUp(deps.CustomerAuth, logg))
			r.Post("/sign-out", controllers.AuthSignOut(deps.CustomerAuth, logg))
			r.Get("/me", controllers.AuthMe(deps.CustomerAuth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(deps.Cookies, logg))

			r.Get("/consent", controllers.ConsentGet())
			r.Put("/consent", controllers.ConsentUpdate(deps.Cookies, logg, nil))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
				r.Patch("/items", controllers.CartUpdateQuantity(deps.Carts, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Carts, logg))
				r.Post("/toggle", controllers.CartToggle(deps.Carts, logg))
				r.Post("/quote", controllers.CartQuote(deps.Carts, logg))
			})

			r.Get("/checkout", controllers.CheckoutSummary(deps.Checkout, logg))
			r.With(
				middleware.RateLimit(checkoutLimit, deps.Counters, logg),
				middleware.Idempotency(deps.Idempotency, middleware.CheckoutReplayTTL, logg),
			).Post("/checkout", controllers.CheckoutSubmit(deps.Checkout, logg))
			r.Get("/checkout/payment-methods/{method}", controllers.PaymentInstructions(deps.Payments, logg))
			r.With(middleware.Idempotency(deps.Idempotency, middleware.AcknowledgeReplayTTL, logg)).
				Post("/checkout/payment-methods/{method}/acknowledge", controllers.PaymentAcknowledge(deps.Payments, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminLogin(deps.AdminAuth, logg))
		r.Post("/auth/logout", controllers.AdminLogout(deps.AdminAuth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.AdminAuth, logg))

			r.Get("/auth/session", controllers.AdminSession(deps.AdminAuth, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminCatalogList(deps.Catalog, logg))
				r.Post("/", controllers.AdminCatalogCreate(deps.Catalog, logg))
				r.Post("/reset", controllers.AdminCatalogReset(deps.Catalog, logg))
				r.Put("/{productId}", controllers.AdminCatalogUpdate(deps.Catalog, logg))
				r.Delete("/{productId}", controllers.AdminCatalogDelete(deps.Catalog, logg))
			})

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", controllers.PlanList(deps.Plans, logg))
				r.Post("/", controllers.AdminPlanCreate(deps.Plans, logg))
				r.Post("/reset", controllers.AdminPlanReset(deps.Plans, logg))
				r.Put("/{planId}", controllers.AdminPlanUpdate(deps.Plans, logg))
				r.Delete("/{planId}", controllers.AdminPlanDelete(deps.Plans, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderGet(deps.Orders, logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderStatus(deps.Orders, logg))
				r.Patch("/{orderId}/payment-status", controllers.AdminOrderPaymentStatus(deps.Orders, logg))
				r.Delete("/{orderId}", controllers.AdminOrderDelete(deps.Orders, logg))
			})

			r.Get("/customers", controllers.AdminCustomerList(deps.Customers, logg))
		})
	})

	return r
}
