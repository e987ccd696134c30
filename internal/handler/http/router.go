package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/r4nb1r/ProfilePulse/internal/service"
	"github.com/r4nb1r/ProfilePulse/pkg/health"
	"github.com/r4nb1r/ProfilePulse/pkg/middleware"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	ServiceName         string
	CORS                middleware.CORSConfig
	Cookie              CookieConfig
	AuthSuccessRedirect string

	// Per-client limit on /api requests. Zero disables it.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	profileService *service.ProfileService,
	authService *service.AuthService,
	codec SessionCodec,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	authHandler := NewAuthHandler(authService, codec, cfg.Cookie, cfg.AuthSuccessRedirect, logger)
	profileHandler := NewProfileHandler(profileService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
		r.Use(ContentTypeJSON)
		r.Use(Sessions(authService, codec, cfg.Cookie))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/url", authHandler.URL)
			r.Get("/callback", authHandler.Callback)
			r.Get("/status", authHandler.Status)
			r.Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(authService))

			r.Post("/profiles", profileHandler.Create)
			r.Get("/profiles", profileHandler.List)
			r.Get("/profiles/{id}", profileHandler.Get)
			r.Get("/stats", profileHandler.Stats)
			r.Get("/test", profileHandler.Test)
		})
	})

	return r
}
