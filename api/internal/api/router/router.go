// api/internal/api/router/router.go
package router

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sealbox/api/internal/api/handlers"
	session_middleware "sealbox/api/internal/api/middleware"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins    []string
	SessionHandler    *handlers.SessionHandler
	SealHandler       *handlers.SealHandler
	RenderHandler     *handlers.RenderHandler
	AuditHandler      *handlers.AuditHandler
	HealthHandler     *handlers.HealthHandler
	SessionMiddleware *session_middleware.SessionMiddleware
	Logger            *slog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(session_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// 🛡️ Limit all incoming JSON requests to 1 Megabyte max (OOM Protection)
	r.Use(session_middleware.MaxBytes(1_048_576))

	// 🛡️ In-memory token bucket rate limiting
	r.Use(cfg.SessionMiddleware.RateLimit)

	// Strict CORS Configuration — the browser UI is the only intended caller
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// =========================================================================
	// 2. Routing Tree
	// =========================================================================

	r.Get("/health", cfg.HealthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {

		// ---------------------------------------------------------------------
		// Public Routes (No Session Required)
		// ---------------------------------------------------------------------
		r.Group(func(r chi.Router) {
			r.Post("/sessions", cfg.SessionHandler.Create)
		})

		// ---------------------------------------------------------------------
		// Protected Routes (Requires a Live Key Session)
		// ---------------------------------------------------------------------
		r.Group(func(r chi.Router) {
			r.Use(cfg.SessionMiddleware.RequireSession)

			r.Delete("/sessions/current", cfg.SessionHandler.RevokeCurrent)

			r.Post("/seal", cfg.SealHandler.Seal)
			r.Post("/open", cfg.SealHandler.Open)
			r.Post("/render", cfg.RenderHandler.Render)

			r.Get("/audit", cfg.AuditHandler.Recent)
		})
	})

	return r
}
