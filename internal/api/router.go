package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kokoro-wiki/kokoro/docs"
	"github.com/kokoro-wiki/kokoro/internal/api/handler"
	"github.com/kokoro-wiki/kokoro/internal/api/middleware"
	"github.com/kokoro-wiki/kokoro/internal/core/ports"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Auth     ports.AuthService
	Registry ports.RegistryService
	Guard    ports.GuardService
	Ledger   ports.LedgerService
	Public   ports.PublicService
	Sessions ports.SessionStore

	// Checks are pinged by the readiness probe.
	Checks []handler.Check

	JWTSecret     string
	BaseURL       string
	SecureCookies bool
	Log           zerolog.Logger

	// Registerer and Gatherer default to the global prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "kokoro",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))
	e.Use(middleware.Auth(deps.JWTSecret, deps.Sessions, deps.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Registry, deps.SecureCookies, deps.Log)
	profileHandler := handler.NewProfileHandler(deps.Registry, deps.Log)
	dashboardHandler := handler.NewDashboardHandler(deps.Guard, deps.Ledger, deps.Log)
	publicHandler := handler.NewPublicHandler(deps.Public, deps.BaseURL, deps.Log)
	healthHandler := handler.NewHealthHandler(deps.Checks...)
	requirePrincipal := middleware.RequirePrincipal()

	// --- Identity ---
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/auth/signout", authHandler.SignOut, requirePrincipal)
	e.GET("/auth/me", authHandler.Me, requirePrincipal)

	// --- Registry ---
	e.GET("/api/v1/usernames/:username/availability", profileHandler.Availability)
	e.POST("/setup", profileHandler.Setup, requirePrincipal)
	e.POST("/edit-username/:username", profileHandler.Rename, requirePrincipal)

	// --- Dashboard (the guard handles anonymous callers after the canonical redirect) ---
	e.GET("/dashboard/:username", dashboardHandler.Show)
	e.POST("/dashboard/:username/:stream", dashboardHandler.Post)

	// --- Health probes and operations (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public pages ---
	e.GET("/", publicHandler.Home)
	e.GET("/og", publicHandler.OGImage)
	e.GET("/api/v1/profiles/:username", publicHandler.Profile)
	e.GET("/:username", publicHandler.Page)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
