package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/restaurant-pos/internal/logger"     // structured logger handed to middleware
	"github.com/iliyamo/restaurant-pos/internal/middleware" // import middleware for JWT authentication and capability checks
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Options carries what the protected groups need besides the handlers.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	Redis     *redis.Client // nil disables the response cache
	RateLimit echo.MiddlewareFunc
	Log       *logger.Logger
}

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check over
// the given dependencies.
func RegisterRoutes(e *echo.Echo, deps map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health(deps))
}

// protected returns a /v1 group that requires a valid access token for a
// known role, rate limited per user.
func protected(e *echo.Echo, o Options) *echo.Group {
	mws := []echo.MiddlewareFunc{
		middleware.JWTAuth(o.JWTSecret),
		middleware.RequireRole(model.Roles()...),
	}
	if o.RateLimit != nil {
		mws = append(mws, o.RateLimit)
	}
	return e.Group("/v1", mws...)
}

// RegisterAuth registers the token endpoints.  Login, refresh and logout
// live under /v1/auth without JWT; /v1/me requires a valid access token.
// There is no self-registration: staff accounts are created through
// POST /v1/users.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, o Options) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	// new access token, refresh token unchanged
	g.POST("/refresh-access", a.RefreshAccess)
	// accepts a refresh_token body or a bearer header
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := protected(e, o)
	auth.GET("/me", a.Me)
	auth.POST("/users", u.Create, middleware.RequireCapability(model.CapManageUsers))
}
