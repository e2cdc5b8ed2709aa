// Package server assembles the echo instance: middleware chain, dashboard pages,
// the authenticated /api groups and the operational endpoints.
package server

import (
	"net/http"
	"path/filepath"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/handlers"
	"github.com/Tonooka01/sistema-analise/internal/repositories/behavior"
	"github.com/Tonooka01/sistema-analise/internal/repositories/churn"
	"github.com/Tonooka01/sistema-analise/internal/repositories/comparison"
	"github.com/Tonooka01/sistema-analise/internal/repositories/details"
	"github.com/Tonooka01/sistema-analise/internal/repositories/finance"
	"github.com/Tonooka01/sistema-analise/internal/repositories/sales"
	"github.com/Tonooka01/sistema-analise/internal/repositories/summary"
	"github.com/Tonooka01/sistema-analise/internal/repositories/tech"
	"github.com/Tonooka01/sistema-analise/internal/repositories/users"
	appctx "github.com/Tonooka01/sistema-analise/pkg/context"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/health"
	"github.com/Tonooka01/sistema-analise/pkg/metrics"
	"github.com/Tonooka01/sistema-analise/pkg/middleware"
	"github.com/Tonooka01/sistema-analise/pkg/ratelimit"
)

type Options struct {
	ServiceName    string
	AdminUsername  string
	StaticDir      string
	MetricsEnabled bool
	Session        auth.SessionConfig
}

// Dependencies are the handles the routes are built from.
type Dependencies struct {
	DB      database.DB
	Schema  *database.Schema
	Users   users.UserRepository
	Limiter ratelimit.Limiter
	Health  *health.Checker
	Logger  ectologger.Logger
}

// New builds the echo instance with every route registered.
func New(opts Options, deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(deps.Logger)

	sessions := auth.NewSessions(opts.Session, deps.Users)

	e.Use(echomw.Recover())
	e.Use(middleware.Context())
	if opts.ServiceName != "" {
		e.Use(otelecho.Middleware(opts.ServiceName))
	}
	e.Use(middleware.Logger(deps.Logger))
	if opts.MetricsEnabled {
		e.Use(metrics.Middleware())
		e.GET("/metrics", metrics.Handler())
	}
	e.Use(middleware.AccessLog(deps.Users, deps.Logger))
	e.Use(middleware.Session(sessions, deps.Users, deps.Logger))
	e.Use(middleware.RequireAPISession())

	if deps.Health != nil {
		deps.Health.RegisterRoutes(e)
	}

	registerPages(e, opts)

	authHandler := handlers.NewAuthHandler(deps.Users, sessions, deps.Limiter, opts.AdminUsername, deps.Logger)
	authHandler.Register(e.Group(""))

	api := e.Group("/api")
	authHandler.RegisterAPI(api)

	analysis := api.Group("/custom_analysis")
	handlers.NewChurnHandler(churn.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(analysis)
	handlers.NewFinanceHandler(finance.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(analysis)
	handlers.NewSalesHandler(sales.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(analysis)
	handlers.NewTechHandler(tech.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(analysis)

	handlers.NewBehaviorHandler(behavior.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(api.Group("/behavior"))
	handlers.NewDetailsHandler(details.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(api.Group("/details"))
	handlers.NewComparisonHandler(comparison.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger).Register(api.Group("/comparison"))

	summaryHandler := handlers.NewSummaryHandler(summary.NewRepository(deps.DB, deps.Schema, deps.Logger), deps.Logger)
	summaryHandler.Register(api)
	summaryHandler.RegisterFilters(api.Group("/filters"))

	handlers.NewAdminHandler(deps.Users, deps.Logger).Register(api.Group("/admin", middleware.RequireAdmin(opts.AdminUsername)))

	return e
}

// registerPages serves the dashboard. Pages redirect to the login form instead
// of answering 401.
func registerPages(e *echo.Echo, opts Options) {
	if opts.StaticDir == "" {
		return
	}
	page := func(name string) string { return filepath.Join(opts.StaticDir, name) }

	e.Static("/static", opts.StaticDir)
	e.File("/favicon.ico", page("favicon.ico"))
	e.File(handlers.LoginPage, page("login.html"))

	e.GET(handlers.HomePage, func(c echo.Context) error {
		if appctx.GetUserID(c.Request().Context()) == 0 {
			return c.Redirect(http.StatusFound, handlers.LoginPage)
		}
		return c.File(page("index.html"))
	})
	e.GET("/admin", func(c echo.Context) error {
		ctx := c.Request().Context()
		if appctx.GetUserID(ctx) == 0 {
			return c.Redirect(http.StatusFound, handlers.LoginPage)
		}
		if appctx.GetUsername(ctx) != opts.AdminUsername {
			return c.Redirect(http.StatusFound, handlers.HomePage)
		}
		return c.File(page("admin.html"))
	})
}
