package routes

import (
	"context"
	"html/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/infra/config"
	"github.com/JorgeDuranS/AppSegura/internal/transport/http/handlers"
	"github.com/JorgeDuranS/AppSegura/internal/transport/http/middleware"
	"github.com/JorgeDuranS/AppSegura/internal/transport/http/templates"
	"github.com/JorgeDuranS/AppSegura/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Vault        *usecase.VaultService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else {
		deps.Logger.Warn("HTTP metrics disabled", zap.Error(err))
	}

	r.SetHTMLTemplate(template.Must(template.ParseFS(templates.FS, "*.html")))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cookieName := deps.Config.Session.CookieName
	apiSession := middleware.RequireSession(deps.Services.Auth, middleware.SessionOptions{
		CookieName: cookieName,
	})
	pageSession := middleware.RequireSession(deps.Services.Auth, middleware.SessionOptions{
		CookieName: cookieName,
		RedirectTo: "/login",
	})

	pageHandler := handlers.NewPageHandler()
	r.GET("/", pageHandler.Index)
	r.GET("/login", pageHandler.Login)
	r.GET("/register", pageHandler.Register)
	r.GET("/data", pageSession, pageHandler.Data)

	authHandler := handlers.NewAuthHandler(
		deps.Services.Registration,
		deps.Services.Auth,
		deps.Config.Session,
		deps.Logger,
	)
	vaultHandler := handlers.NewVaultHandler(deps.Services.Vault, deps.Logger)

	api := r.Group("/api")
	{
		api.POST("/register", append(registerRateLimit(deps), authHandler.Register)...)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", apiSession, middleware.RequireCSRF(), authHandler.Logout)

		api.GET("/data", apiSession, vaultHandler.Load)
		api.POST("/data", apiSession, middleware.RequireCSRF(), vaultHandler.Save)
	}

	return r
}

// registerRateLimit throttles account creation per client IP. Login has its
// own counter inside the auth service because it must reset on success.
func registerRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.RegisterMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "register_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
