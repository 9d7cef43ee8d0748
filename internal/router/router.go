package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-auth-service/internal/config"
	"github.com/iliyamo/user-auth-service/internal/handler"
	"github.com/iliyamo/user-auth-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// used by load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Deps carries everything route registration needs.  It keeps main
// honest: handlers and middleware receive configuration by injection and
// never reach for ambient globals.
type Deps struct {
	Cfg       config.Config
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Auth      *handler.AuthHandler
	Admin     *handler.AdminHandler
}

// RegisterAuth wires the authentication and admin endpoints.
//
// The /auth group mixes three tiers: the credential endpoints
// (register/login) sit behind the rate limiter only, refresh and logout
// authenticate through the refresh cookie inside the handler, and /auth/me
// plus /auth/admin require a bearer token.  The /admin/users group is
// fully admin-gated; the role check never runs before Authenticate has
// attached the identity.
func (d Deps) RegisterAuth(e *echo.Echo) {
	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	authn := middleware.Authenticate(d.Cfg.AccessSecret)
	admin := middleware.RequireAdmin()

	g := e.Group("/auth")
	g.POST("/register", d.Auth.Register, limiter)
	g.POST("/login", d.Auth.Login, limiter)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)
	g.GET("/me", d.Auth.Me, authn)
	g.GET("/admin", d.Admin.Dashboard, authn, admin)

	users := e.Group("/admin/users", authn, admin)
	users.GET("", d.Admin.ListUsers)
	users.GET("/:id", d.Admin.GetUser)
	users.PATCH("/:id/role", d.Admin.UpdateUserRole)
	users.DELETE("/:id", d.Admin.DeleteUser)
}
