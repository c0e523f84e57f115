package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/storefront-backend/api/controllers"
	"github.com/oakmart/storefront-backend/api/middleware"
	authsvc "github.com/oakmart/storefront-backend/internal/auth"
	cartsvc "github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/internal/catalog"
	ordersvc "github.com/oakmart/storefront-backend/internal/orders"
	"github.com/oakmart/storefront-backend/pkg/auth/session"
	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/logger"
	"github.com/oakmart/storefront-backend/pkg/metrics"
	"github.com/oakmart/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	httpMetrics *metrics.HTTPMetrics,
	authService authsvc.Service,
	registerService authsvc.RegisterService,
	catalogService catalog.Service,
	cartService cartsvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginAccountLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterAccountLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.HealthReady(cfg, database, redisClient))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, database, redisClient))
	})
	if httpMetrics != nil {
		r.Handle("/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.Register(registerService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Post("/logout", controllers.Logout(authService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/search", controllers.ListProducts(catalogService, logg))
		r.Get("/{id}", controllers.GetProduct(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Put("/{id}", controllers.UpdateProduct(catalogService, logg))
			r.Delete("/{id}", controllers.DeleteProduct(catalogService, logg))
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
			r.Post("/", controllers.CreateCategory(catalogService, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Get("/", controllers.GetCart(cartService, logg))
		r.Get("/total", controllers.GetCartSummary(cartService, logg))
		r.Post("/add/{product_id}", controllers.AddCartItem(cartService, logg))
		r.Put("/update/{product_id}", controllers.UpdateCartItem(cartService, logg))
		r.Delete("/remove/{product_id}", controllers.RemoveCartItem(cartService, logg))
		r.Post("/clear", controllers.ClearCart(cartService, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Post("/", controllers.CreateOrder(orderService, logg))
		r.Get("/", controllers.ListOrders(orderService, logg))
		r.Get("/{id}", controllers.GetOrder(orderService, logg))
		r.Put("/{id}/cancel", controllers.CancelOrder(orderService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
			r.Put("/{id}/status", controllers.UpdateOrderStatus(orderService, logg))
		})
	})

	return r
}
