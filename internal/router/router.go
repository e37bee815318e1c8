package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/blog-api/internal/auth"
	"github.com/iliyamo/blog-api/internal/config"
	"github.com/iliyamo/blog-api/internal/handler"
	"github.com/iliyamo/blog-api/internal/middleware"
	"github.com/iliyamo/blog-api/internal/policy"
)

// Deps is everything the route table needs.  Redis may be nil, in which
// case caching and rate limiting are pass-through.
type Deps struct {
	Resolver  *auth.Resolver
	DB        handler.Pinger
	Auth      *handler.AuthHandler
	Posts     *handler.PostHandler
	Comments  *handler.CommentHandler
	Likes     *handler.LikeHandler
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// Setup installs the request pipeline and every route on e.  Each request
// first has its identity resolved, then passes the rate limiter (which keys
// on that identity) and finally the per-route policy gate.
func Setup(e *echo.Echo, d Deps) {
	e.Use(middleware.ResolveIdentity(d.Resolver))
	e.Use(middleware.NewTokenBucket(d.RateLimit, d.Redis))
	e.Use(middleware.InvalidateCache(d.Cache, d.Redis))

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth)
	RegisterPublic(e, d.Posts, d.Comments, middleware.NewRedisCache(d.Cache, d.Redis))
	RegisterMember(e, d.Comments, d.Likes)
	RegisterAdmin(e, d.Posts, d.Comments)
}

// RegisterRoutes registers routes that are not part of the API proper.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers account routes.  Signup, login, logout and e-mail
// verification work without a token; the rest require one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/signup", a.Signup)
	e.POST("/login", a.Login)
	e.DELETE("/logout", a.Logout)
	e.GET("/verify-email", a.VerifyEmail)

	e.POST("/resend-verification", a.ResendVerification, middleware.Require(policy.AuthResendVerification))
	e.GET("/me", a.Me, middleware.Require(policy.AccountMe))
}
