package api

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/go-crm/internal/api/handlers"
	"github.com/hugh/go-crm/internal/api/middleware"
	"github.com/hugh/go-crm/internal/auth"
	"github.com/hugh/go-crm/internal/blob"
	"github.com/hugh/go-crm/internal/crm"
	"github.com/hugh/go-crm/internal/dashboard"
	"github.com/hugh/go-crm/internal/metrics"
	"github.com/hugh/go-crm/internal/teams"
	"github.com/hugh/go-crm/internal/users"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
	limiter *middleware.RateLimiter
}

type RouterConfig struct {
	DB         *gorm.DB
	Redis      *redis.Client // optional; shared rate limiting and health
	Logger     *slog.Logger
	JWTService *auth.JWTService
	// ExternalVerifier accepts identity provider tokens; nil disables it.
	ExternalVerifier auth.TokenVerifier
	// Verification delivers email verification tokens; nil drops them.
	Verification   auth.VerificationSender
	Blob           blob.Store
	Metrics        *metrics.Metrics // optional
	AllowedOrigins []string         // CORS allowed origins
	RateLimitReqs  int              // Rate limit requests per window
	RateLimitSecs  int              // Rate limit window in seconds
	TrustedProxies []netip.Prefix   // peers allowed to set X-Forwarded-For
	MaxUploadBytes int64
	SecureCookies  bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	router := &Router{Router: r}

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.TrustedRealIP(cfg.TrustedProxies))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecureHeaders)

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		router.limiter = middleware.NewRateLimiter(cfg.RateLimitReqs, cfg.RateLimitSecs)
		var limiter middleware.Limiter = router.limiter
		if cfg.Redis != nil {
			limiter = middleware.NewRedisLimiter(cfg.Redis, cfg.RateLimitReqs, cfg.RateLimitSecs, router.limiter, cfg.Logger)
		}
		var onReject func(string)
		if cfg.Metrics != nil {
			onReject = cfg.Metrics.IncRateLimitRejection
		}
		r.Use(middleware.RateLimit(limiter, onReject))
	}

	// CORS - restrict to configured origins, or localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var denials handlers.DenialRecorder
	if cfg.Metrics != nil {
		denials = cfg.Metrics
	}
	rs := handlers.NewResponder(cfg.Logger, denials)

	// Initialize services
	userService := users.NewService(cfg.DB, cfg.Logger)
	authService := auth.NewService(cfg.DB, cfg.JWTService, userService, cfg.Verification)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(authService, rs, cfg.JWTService.Expiry(), cfg.SecureCookies)
	userHandler := handlers.NewUserHandler(userService, rs)
	teamHandler := handlers.NewTeamHandler(teams.NewService(cfg.DB, cfg.Logger), rs)
	contactHandler := handlers.NewContactHandler(crm.NewContacts(cfg.DB, cfg.Logger), rs)
	projectHandler := handlers.NewProjectHandler(crm.NewProjects(cfg.DB, cfg.Logger), rs)
	taskHandler := handlers.NewTaskHandler(crm.NewTasks(cfg.DB, cfg.Logger), rs)
	activityHandler := handlers.NewActivityHandler(crm.NewActivities(cfg.DB, cfg.Logger), rs)
	fileHandler := handlers.NewFileHandler(crm.NewFiles(cfg.DB, cfg.Blob, cfg.Logger), rs, cfg.MaxUploadBytes)
	dashboardHandler := handlers.NewDashboardHandler(dashboard.NewService(cfg.DB, cfg.Logger), rs)

	// Operational endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	verifiers := []auth.TokenVerifier{cfg.JWTService}
	if cfg.ExternalVerifier != nil {
		verifiers = append(verifiers, cfg.ExternalVerifier)
	}

	// API routes. Identity is optional here; every service resolves the
	// caller itself and rejects anonymous access where it matters.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifiers...))

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/verify", authHandler.VerifyEmail)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/users/me", userHandler.Me)
		r.Patch("/users/me", userHandler.UpdateMe)
		r.Post("/users", userHandler.Create)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Post("/", teamHandler.Create)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", teamHandler.Get)
				r.Patch("/", teamHandler.Update)

				r.Get("/members", teamHandler.Members)
				r.Post("/members", teamHandler.AddMember)
				r.Patch("/members/{userID}", teamHandler.UpdateMemberRole)
				r.Delete("/members/{userID}", teamHandler.RemoveMember)

				r.Get("/contacts", contactHandler.List)
				r.Post("/contacts", contactHandler.Create)
				r.Get("/projects", projectHandler.List)
				r.Post("/projects", projectHandler.Create)
				r.Get("/tasks", taskHandler.List)
				r.Post("/tasks", taskHandler.Create)
				r.Get("/activities", activityHandler.List)
				r.Post("/activities", activityHandler.Create)
				r.Get("/files", fileHandler.List)
				r.Post("/files", fileHandler.Upload)

				r.Get("/dashboard/stats", dashboardHandler.Stats)
				r.Get("/dashboard/activities", dashboardHandler.Activities)
				r.Get("/dashboard/pipeline", dashboardHandler.Pipeline)
			})
		})

		r.Route("/contacts/{id}", func(r chi.Router) {
			r.Get("/", contactHandler.Get)
			r.Patch("/", contactHandler.Update)
			r.Delete("/", contactHandler.Delete)
		})
		r.Route("/projects/{id}", func(r chi.Router) {
			r.Get("/", projectHandler.Get)
			r.Patch("/", projectHandler.Update)
			r.Delete("/", projectHandler.Delete)
		})
		r.Route("/tasks/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.Get)
			r.Patch("/", taskHandler.Update)
			r.Delete("/", taskHandler.Delete)
		})
		r.Route("/activities/{id}", func(r chi.Router) {
			r.Get("/", activityHandler.Get)
			r.Patch("/", activityHandler.Update)
			r.Delete("/", activityHandler.Delete)
		})
		r.Route("/files/{id}", func(r chi.Router) {
			r.Get("/", fileHandler.Get)
			r.Get("/content", fileHandler.Content)
			r.Patch("/", fileHandler.Update)
			r.Delete("/", fileHandler.Delete)
		})
	})

	return router
}

// Close stops background work owned by the router.
func (rt *Router) Close() {
	if rt.limiter != nil {
		rt.limiter.Stop()
	}
}
