package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yahyahetari/electronics-admin/internal/media"
	"github.com/yahyahetari/electronics-admin/internal/service"
	"github.com/yahyahetari/electronics-admin/pkg/health"
	"github.com/yahyahetari/electronics-admin/pkg/middleware"
)

// RouterDeps holds the services and infrastructure the router wires handlers to.
type RouterDeps struct {
	Categories *service.CategoryService
	Products   *service.ProductService
	Orders     *service.OrderService
	Dashboard  *service.DashboardService
	Media      *media.Client
	Health     *health.Handler
	CORS       middleware.CORSConfig
	// Auth, when non-nil, gates all /api/v1 routes. Health and metrics
	// stay open for probes and scrapers.
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// NewRouter creates a chi router with all admin API routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Tracing("electronics-admin"))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics("electronics-admin"))

	// Health and metrics endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth)
		}

		registerAPIRoutes(r, deps)
	})

	return r
}

func registerAPIRoutes(r chi.Router, deps RouterDeps) {
	// Category API endpoints
	categoryHandler := NewCategoryHandler(deps.Categories, deps.Logger)

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", categoryHandler.ListCategories)
		r.Get("/{idOrSlug}", categoryHandler.GetCategory)
		r.Get("/{id}/properties", categoryHandler.GetCategoryProperties)
		r.Get("/{id}/tags", categoryHandler.GetCategoryTags)
		r.Post("/", categoryHandler.CreateCategory)
		r.Put("/{id}", categoryHandler.UpdateCategory)
		r.Delete("/{id}", categoryHandler.DeleteCategory)
	})

	// Product API endpoints
	productHandler := NewProductHandler(deps.Products, deps.Logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Get("/{idOrSlug}", productHandler.GetProduct)
		r.Get("/{id}/variant-groups", productHandler.GetVariantGroups)
		r.Post("/", productHandler.CreateProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	// Order and customer API endpoints
	orderHandler := NewOrderHandler(deps.Orders, deps.Logger)

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", orderHandler.ListOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Put("/{id}/viewed", orderHandler.MarkOrderViewed)
	})

	r.With(ContentTypeJSON).Get("/api/v1/customers", orderHandler.ListCustomers)

	// Dashboard API endpoints
	dashboardHandler := NewDashboardHandler(deps.Dashboard, deps.Logger)

	r.With(middleware.CacheControl(30), ContentTypeJSON).Get("/api/v1/dashboard/stats", dashboardHandler.GetStats)

	// Upload endpoint takes multipart bodies, so no JSON content-type guard.
	uploadHandler := NewUploadHandler(deps.Media, deps.Logger)

	r.Post("/api/v1/uploads", uploadHandler.Upload)
}
