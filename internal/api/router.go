package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/lyvo/session-gateway/internal/api/handler"
	"github.com/lyvo/session-gateway/internal/api/middleware"
	"github.com/lyvo/session-gateway/internal/core/domain"
	"github.com/lyvo/session-gateway/internal/core/ports"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Log          zerolog.Logger
	JWTSecret    string
	CookieSecure bool
	// SPADir serves the built SPA behind EntryRedirect when set.
	SPADir string

	Auth     ports.AuthService
	Sessions ports.SessionService
	Store    ports.SessionReader
	Tabs     handler.TabRegistry
	Health   map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("session_gateway"))

	// --- Ops (no device, no auth) ---
	healthHandler := handler.NewHealthHandler(d.Health)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	device := middleware.Device(middleware.DeviceOptions{Secure: d.CookieSecure})
	requireSession := middleware.RequireSession(d.Store)

	v1 := e.Group("/v1")

	// --- Session (device scoped) ---
	sessionHandler := handler.NewSessionHandler(d.Sessions)
	session := v1.Group("/session", device)
	session.GET("", sessionHandler.Current)
	session.POST("/login", sessionHandler.Login)
	session.POST("/register", sessionHandler.Register)
	session.POST("/logout", sessionHandler.Logout)
	session.POST("/refresh", sessionHandler.Refresh)
	session.POST("/onboarding/complete", sessionHandler.CompleteOnboarding, requireSession)
	session.PUT("/profile", sessionHandler.UpdateProfile, requireSession)

	// --- Navigation decisions ---
	navHandler := handler.NewNavigationHandler(d.Store, d.Log)
	nav := v1.Group("/navigation", device)
	nav.POST("/decide", navHandler.Decide)
	nav.GET("/shell", navHandler.Shell)

	// --- Live tabs ---
	tabHandler := handler.NewTabHandler(d.Tabs, d.Log)
	tabs := v1.Group("/tabs", device)
	tabs.GET("/stream", tabHandler.Stream)
	tabs.POST("/:tab_id/path", tabHandler.Path)

	// --- Bearer clients ---
	accountHandler := handler.NewAccountHandler(d.Auth)
	account := v1.Group("/account", middleware.Auth(d.JWTSecret))
	account.GET("/me", accountHandler.Me)
	account.POST("/onboarding", accountHandler.Onboarding, middleware.RBAC(domain.RoleSeeker))

	// --- SPA ---
	if d.SPADir != "" {
		spa := handler.NewSPAHandler(d.SPADir)
		e.GET("/*", spa.Serve, device, middleware.EntryRedirect(d.Store, d.Log))
	}

	return e
}

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
