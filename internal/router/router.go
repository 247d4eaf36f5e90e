package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tabegoro/tabegoro/internal/config"
	"github.com/tabegoro/tabegoro/internal/handler"
	"github.com/tabegoro/tabegoro/internal/metrics"
	"github.com/tabegoro/tabegoro/internal/middleware"
)

// RegisterRoutes wires the operational endpoints: a health check for load
// balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", metrics.HandlerFunc())
}

// RegisterAuth registers signup/login/refresh/logout under /v1/auth. Logout
// accepts an optional bearer token so it can revoke every session of the
// caller when no refresh token is supplied in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.OptionalJWT(jwtSecret))
}

// RegisterPublic registers the guest browse surface. All routes go through
// the Redis token bucket; the landing index and search additionally sit
// behind the response cache because they are viewer independent. Restaurant
// detail and review listings carry per-viewer flags (favorite, own review)
// and are never cached.
func RegisterPublic(e *echo.Echo, s *handler.ShopHandler, rev *handler.ReviewHandler, resv *handler.ReservationHandler, sub *handler.SubscriptionHandler, jwtSecret string, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1", middleware.OptionalJWT(jwtSecret), middleware.NewTokenBucket(rlCfg, rdb))

	cached := middleware.NewRedisCache(cacheCfg, rdb)
	g.GET("/shops", s.Index, cached)
	g.GET("/restaurants", s.Search, cached)

	g.GET("/restaurants/:id", s.Detail)
	g.GET("/restaurants/:id/reviews", rev.ListForShop)
	g.GET("/restaurants/:id/reserve", resv.Form)

	// The provider public key is needed before login to render the plan
	// page; member card details ride along only for authenticated callers.
	g.GET("/subscription/config", sub.Config)
}
