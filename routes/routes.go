package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/gateway-policy-hooks/app"
	"github.com/upb/gateway-policy-hooks/handlers"
	"github.com/upb/gateway-policy-hooks/hooks"
	"github.com/upb/gateway-policy-hooks/middleware"
	"github.com/upb/gateway-policy-hooks/utils"
)

// proxyPrefix is the path prefix of routes forwarded upstream
const proxyPrefix = "/v1/proxy"

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies, upstream http.Handler) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck())
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps))

		// Extension points called by the gateway host
		r.Route("/hooks", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.OptionalAuth)
			r.Get("/quota-detail/{policyName}", handlers.QuotaDetailHandler(deps))
			r.Get("/rate-limit-key", handlers.RateLimitKeyHandler(deps))
		})

		// Traffic forwarded upstream after inbound policies
		r.Route("/proxy", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.OptionalAuth)
			r.Use(middleware.Inbound(deps.Runtime, deps.Inbound, nil, hooks.UsagePolicyName))
			r.Handle("/*", http.StripPrefix(proxyPrefix, upstream))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
