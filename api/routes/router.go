package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidrenteria/storefront-backend/api/controllers"
	"github.com/davidrenteria/storefront-backend/api/middleware"
	"github.com/davidrenteria/storefront-backend/internal/auth"
	"github.com/davidrenteria/storefront-backend/internal/cart"
	"github.com/davidrenteria/storefront-backend/internal/catalog"
	checkoutsvc "github.com/davidrenteria/storefront-backend/internal/checkout"
	"github.com/davidrenteria/storefront-backend/internal/orders"
	"github.com/davidrenteria/storefront-backend/pkg/auth/session"
	"github.com/davidrenteria/storefront-backend/pkg/config"
	"github.com/davidrenteria/storefront-backend/pkg/enums"
	"github.com/davidrenteria/storefront-backend/pkg/logger"
	"github.com/davidrenteria/storefront-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the route table wires together.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             pinger
	Redis          *redis.Client
	SessionManager session.AccessSessionChecker
	Gatherer       prometheus.Gatherer

	AuthService     auth.Service
	CatalogService  catalog.Service
	CatalogRepo     *catalog.Repository
	CartStore       *cart.Store
	CheckoutService checkoutsvc.Service
	OrdersService   orders.Service
}

// NewRouter builds the full HTTP route table.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy("login", cfg.RateLimit)
	registerPolicy := middleware.NewAuthRateLimitPolicy("register", cfg.RateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.Register(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
			r.Post("/logout", controllers.Logout(deps.AuthService, deps.CartStore, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/products", controllers.ListProducts(deps.CatalogService, logg))
		r.Get("/products/{productID}", controllers.GetProduct(deps.CatalogService, logg))
		r.Get("/categories", controllers.ListCategories(deps.CatalogService, logg))

		// Session-scoped storefront operations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.CartStore, logg))
				r.Delete("/", controllers.ClearCart(deps.CartStore, logg))
				r.Post("/items", controllers.AddCartItem(deps.CartStore, deps.CatalogRepo, logg))
				r.Put("/items/{productID}", controllers.SetCartItemQuantity(deps.CartStore, logg))
				r.Delete("/items/{productID}", controllers.RemoveCartItem(deps.CartStore, logg))
			})

			r.With(middleware.IdempotencyKey(logg)).Post("/checkout", controllers.Checkout(deps.CheckoutService, deps.CartStore, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(deps.OrdersService, logg))
				r.Get("/{orderID}", controllers.GetOrder(deps.OrdersService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.CatalogService, logg))
			r.Put("/{productID}", controllers.AdminUpdateProduct(deps.CatalogService, logg))
			r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.CatalogService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(deps.CatalogService, logg))
			r.Put("/{categoryID}", controllers.AdminUpdateCategory(deps.CatalogService, logg))
			r.Delete("/{categoryID}", controllers.AdminDeleteCategory(deps.CatalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(deps.OrdersService, logg))
			r.Patch("/{orderID}/status", controllers.AdminUpdateOrderStatus(deps.OrdersService, logg))
		})
	})

	return r
}
