// Package router registers the HTTP routes of the service.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-reservation/internal/config"
	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/metrics"
	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth   *handler.AuthHandler
	Admin  *handler.AdminHandler
	User   *handler.UserHandler
	Public *handler.PublicHandler
}

// Options carries the middleware settings.  Redis may be nil.
type Options struct {
	JWTSecret string
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Log       logrus.FieldLogger
}

// New builds the echo instance with every route and the global
// middleware chain: request logging, metrics, optional identity and the
// token bucket.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// identity must be known before the limiter builds its key
	e.Use(
		middleware.RequestLogger(opts.Log),
		middleware.Metrics(),
		middleware.OptionalJWT(opts.JWTSecret),
		middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log),
	)

	RegisterPublic(e, h, opts)
	RegisterAuth(e, h.Auth, opts.JWTSecret)
	RegisterAdmin(e, h.Admin, opts.JWTSecret)
	RegisterUser(e, h.User, opts.JWTSecret)
	return e
}

// RegisterPublic registers the routes that need no token.
func RegisterPublic(e *echo.Echo, h Handlers, opts Options) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/api/lot/:lot_id/layout", h.Public.LotLayout, middleware.NewResponseCache(opts.Cache, opts.Redis))
}

// RegisterAuth registers login, registration and session routes.  Login
// and register see the optional identity so they can tell a caller that is
// already signed in.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	e.GET("/", a.Home)
	e.POST("/login", a.Login)
	e.POST("/register", a.Register)
	e.POST("/refresh", a.Refresh)
	e.GET("/logout", a.Logout, middleware.JWTAuth(jwtSecret))
}

// RegisterAdmin registers administrator routes under /admin.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/dashboard", a.Dashboard)
	g.GET("/analytics", a.Analytics)
	g.POST("/create_lot", a.CreateLot)
	g.POST("/update_lot", a.UpdateLot)
	g.POST("/delete_lot/:lot_id", a.DeleteLot)
	g.POST("/spot/:spot_id/status", a.SetSpotStatus)
}

// RegisterUser registers the end-user routes.  They are spread over
// several prefixes, so the middleware is attached per route.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	mw := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser),
	}

	g := e.Group("/user", mw...)
	g.GET("/dashboard", u.Dashboard)
	g.GET("/profile", u.Profile)
	g.POST("/profile", u.Profile)
	g.GET("/edit_profile", u.Profile)
	g.POST("/edit_profile", u.EditProfile)
	g.GET("/change_password", u.PasswordForm)
	g.POST("/change_password", u.ChangePassword)
	g.GET("/wallet", u.WalletPage)
	g.POST("/pay/:reservation_id", u.Pay)

	e.POST("/add_money", u.AddMoney, mw...)
	e.POST("/withdraw_money", u.WithdrawMoney, mw...)
	e.GET("/api/wallet/balance", u.Balance, mw...)
	e.POST("/book/:lot_id", u.Book, mw...)
	e.POST("/release/:reservation_id", u.Release, mw...)
}
