package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/carelink/auth-server/internal/api/handler"
	"github.com/carelink/auth-server/internal/api/middleware"
	"github.com/carelink/auth-server/internal/core/domain"
	"github.com/carelink/auth-server/internal/core/ports"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log            zerolog.Logger
	AuthService    ports.AuthService
	AccountService ports.AccountService
	Mongo          handler.Pinger

	Production   bool
	AllowOrigins []string

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.Production)

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if len(deps.AllowOrigins) == 0 {
		deps.AllowOrigins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithRequestID(req.Context(), id)))
		},
	}))
	// The request logger below hands errors to the error handler, so the
	// committed status is already final when metrics are observed.
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:                 "http",
		Registerer:                deps.Registerer,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		StatusCodeResolver: func(c echo.Context, _ error) int {
			return c.Response().Status
		},
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.Secure())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	accountHandler := handler.NewAccountHandler(deps.AccountService)
	healthHandler := handler.NewHealthHandler(deps.Mongo)
	gate := middleware.Auth(deps.AuthService, deps.Log)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Ops (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.GET("/", apiLocation)

	// --- API v1 ---
	v1 := e.Group("/api/v1")
	v1.GET("", apiLocation)

	users := v1.Group("/users")
	users.GET("", accountHandler.List)
	users.POST("", authHandler.Register)
	users.PUT("", accountHandler.UpdateSelf, gate)
	users.DELETE("", accountHandler.DeleteSelf, gate)
	users.GET("/token", authHandler.Token, gate)
	users.GET("/check", authHandler.Check)
	users.GET("/:id", accountHandler.Get)
	users.PUT("/:id", accountHandler.UpdateByAdmin, gate, adminOnly)
	users.DELETE("/:id", accountHandler.DeleteByAdmin, gate, adminOnly)

	v1.POST("/auth/login", authHandler.Login)

	return e
}

func apiLocation(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "API location: api/v1"})
}

// requestLogger writes one zerolog line per request. Bodies and headers are
// never logged.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
