package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/akilawedasinghe/symetrix/internal/api/handler"
	"github.com/akilawedasinghe/symetrix/internal/api/middleware"
	"github.com/akilawedasinghe/symetrix/internal/core/domain"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/http/handlers"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Log              zerolog.Logger
	JWTSecret        string
	AllowStaffSignup bool

	AuthService      ports.AuthService
	TicketService    ports.TicketService
	KnowledgeService ports.KnowledgeService
	Ledgers          handler.LedgerProvider
	Sessions         session.SnapshotStore

	// HealthChecks are run by the readiness probe, keyed by dependency name.
	HealthChecks map[string]handlers.Check

	// Registerer and Gatherer default to the global Prometheus registry.
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

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, "Idempotency-Key"},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "helpdesk",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Sessions, deps.AllowStaffSignup)
	userHandler := handler.NewUserHandler(deps.AuthService)
	notificationHandler := handler.NewNotificationHandler(deps.Ledgers)
	ticketHandler := handler.NewTicketHandler(deps.TicketService)
	knowledgeHandler := handler.NewKnowledgeHandler(deps.KnowledgeService)

	authenticated := []echo.MiddlewareFunc{
		middleware.Auth(deps.JWTSecret),
		middleware.Session(deps.Sessions, deps.AuthService, deps.Log),
	}
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleSupport)
	clientOnly := middleware.RBAC(domain.RoleClient)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout, authenticated...)
	auth.GET("/me", authHandler.Me, authenticated...)

	v1 := e.Group("/v1", authenticated...)

	// --- Directory ---
	v1.GET("/users", userHandler.List)
	v1.POST("/users", userHandler.Create, adminOnly)
	v1.PATCH("/users/:id", userHandler.Update, adminOnly)
	v1.DELETE("/users/:id", userHandler.Delete, adminOnly)
	v1.POST("/users/:id/password", userHandler.ResetPassword, adminOnly)

	// --- Notifications ---
	v1.GET("/notifications", notificationHandler.List)
	v1.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	v1.POST("/notifications", notificationHandler.Add)
	v1.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	v1.POST("/notifications/:id/read", notificationHandler.MarkRead)
	v1.DELETE("/notifications", notificationHandler.ClearAll)
	v1.DELETE("/notifications/:id", notificationHandler.Clear)

	// --- Tickets ---
	v1.POST("/tickets", ticketHandler.Create, clientOnly)
	v1.GET("/tickets", ticketHandler.List)
	v1.GET("/tickets/:id", ticketHandler.Get)
	v1.PATCH("/tickets/:id/status", ticketHandler.UpdateStatus)
	v1.POST("/tickets/:id/assign", ticketHandler.Assign, staffOnly)
	v1.GET("/tickets/:id/messages", ticketHandler.ListMessages)
	v1.POST("/tickets/:id/messages", ticketHandler.AddMessage)
	v1.GET("/dashboard", ticketHandler.Dashboard)

	// --- Knowledge base ---
	v1.GET("/knowledge", knowledgeHandler.List)

	return e
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= 500:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
