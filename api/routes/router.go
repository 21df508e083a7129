package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fooddash/fooddash-backend/api/controllers"
	"github.com/fooddash/fooddash-backend/api/middleware"
	cartsvc "github.com/fooddash/fooddash-backend/internal/cart"
	"github.com/fooddash/fooddash-backend/internal/catalog"
	checkoutsvc "github.com/fooddash/fooddash-backend/internal/checkout"
	ordersvc "github.com/fooddash/fooddash-backend/internal/orders"
	"github.com/fooddash/fooddash-backend/pkg/config"
	"github.com/fooddash/fooddash-backend/pkg/logger"
	pkgredis "github.com/fooddash/fooddash-backend/pkg/redis"
)

// Deps carries the wired services the router hands to controllers.
type Deps struct {
	Redis      *pkgredis.Client
	Pingers    map[string]controllers.Pinger
	Carts      controllers.CartStoreFactory
	Calculator cartsvc.Calculator
	Catalog    catalog.Service
	Checkout   checkoutsvc.Service
	Orders     ordersvc.Service
	MetricsReg *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.MetricsReg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsReg, promhttp.HandlerOpts{}))
	}

	// A typed nil *Client must not reach the middleware as a non-nil interface.
	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idemStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartToken(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.Ping())

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", controllers.ListRestaurants(deps.Catalog, logg))
			r.Get("/{slug}", controllers.GetRestaurant(deps.Catalog, logg))
			r.Get("/{slug}/menu", controllers.GetRestaurantMenu(deps.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(deps.Catalog, logg))
			r.Get("/{id}/menu", controllers.GetCategoryMenu(deps.Catalog, logg))
		})
		r.Get("/delivery-zones", controllers.ListDeliveryZones(deps.Catalog, logg))
		r.Get("/menu/featured", controllers.FeaturedMenu(deps.Catalog, logg))
		r.Get("/search", controllers.Search(deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Carts, deps.Calculator, logg))
			r.Get("/totals", controllers.GetCartTotals(deps.Carts, deps.Calculator, logg))
			r.Post("/items", controllers.AddCartItem(deps.Carts, deps.Catalog, deps.Calculator, logg))
			r.Patch("/items/{itemId}", controllers.UpdateCartItem(deps.Carts, deps.Calculator, logg))
			r.Delete("/items/{itemId}", controllers.RemoveCartItem(deps.Carts, deps.Calculator, logg))
			r.Delete("/", controllers.ClearCart(deps.Carts, deps.Calculator, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/intent", controllers.CreatePaymentIntent(deps.Checkout, logg))
			r.Post("/confirm", controllers.ConfirmPayment(deps.Checkout, deps.Carts, logg))
		})

		r.Get("/orders/{orderNumber}", controllers.GetOrder(deps.Orders, logg))
	})

	return r
}
