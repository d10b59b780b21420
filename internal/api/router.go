package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/druk-utility/consumer-registry/docs"
	"github.com/druk-utility/consumer-registry/internal/api/handler"
	"github.com/druk-utility/consumer-registry/internal/api/middleware"
	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Auth       ports.AuthService
	Gate       ports.AccessGate
	Users      ports.UserService
	Dzongkhags ports.DzongkhagService
	Gewogs     ports.GewogService
	Consumers  ports.ConsumerService

	// Readiness checks run by GET /health/ready, keyed by dependency name.
	Readiness map[string]handler.DependencyCheck

	// Registry receives the HTTP request metrics and backs /metrics. Nil
	// uses the default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "registry",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	dzongkhagHandler := handler.NewDzongkhagHandler(deps.Dzongkhags)
	gewogHandler := handler.NewGewogHandler(deps.Gewogs)
	consumerHandler := handler.NewConsumerHandler(deps.Consumers)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	authenticated := middleware.Auth(deps.Gate)
	requireRole := func(roles ...domain.Role) echo.MiddlewareFunc {
		return middleware.RBAC(deps.Gate, roles...)
	}

	// --- Public ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1")

	// --- Users ---
	users := v1.Group("/users")
	users.POST("/adduser", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/me", authHandler.Me, authenticated)
	users.GET("/getall", userHandler.List, authenticated)
	users.PATCH("/:id", userHandler.Update, authenticated, requireRole(domain.RoleSuperAdmin))
	users.DELETE("/:id", userHandler.Delete, authenticated, requireRole(domain.RoleSuperAdmin))

	// --- Dzongkhags ---
	dzongkhags := v1.Group("/dzongkhag", authenticated)
	dzongkhags.GET("", dzongkhagHandler.List)
	dzongkhags.GET("/:id", dzongkhagHandler.Get)
	dzongkhags.POST("", dzongkhagHandler.Create, requireRole(domain.RoleSuperAdmin))
	dzongkhags.PATCH("/:id", dzongkhagHandler.Update, requireRole(domain.RoleSuperAdmin))
	dzongkhags.DELETE("/:id", dzongkhagHandler.Delete, requireRole(domain.RoleSuperAdmin))

	// --- Gewogs ---
	gewogs := v1.Group("/gewog", authenticated)
	gewogs.GET("", gewogHandler.List)
	gewogs.GET("/:id", gewogHandler.Get)
	gewogs.POST("", gewogHandler.Create, requireRole(domain.RoleDzongkhagAdmin))
	gewogs.PATCH("/:id", gewogHandler.Update, requireRole(domain.RoleDzongkhagAdmin))
	gewogs.DELETE("/:id", gewogHandler.Delete, requireRole(domain.RoleDzongkhagAdmin))

	// --- Consumers ---
	consumers := v1.Group("/consumer", authenticated)
	consumers.GET("", consumerHandler.List)
	consumers.GET("/:id", consumerHandler.Get)
	consumers.POST("", consumerHandler.Create, requireRole(domain.RoleGewogOperator))
	consumers.PATCH("/:id", consumerHandler.Update, requireRole(domain.RoleGewogOperator))
	consumers.DELETE("/:id", consumerHandler.Delete, requireRole(domain.RoleGewogOperator))

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
