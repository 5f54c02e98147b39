package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/aquaflow/servicecrm/internal/api/handler"
	"github.com/aquaflow/servicecrm/internal/api/middleware"
	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Dashboard     *handler.DashboardHandler
	Customers     *handler.CustomerHandler
	Products      *handler.ProductHandler
	Assets        *handler.AssetHandler
	ServiceOrders *handler.ServiceOrderHandler
	Users         *handler.UserHandler
	Roles         *handler.RoleHandler
	Health        *handler.HealthHandler
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(h Handlers, auth middleware.Authenticator, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddleware("servicecrm"))

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.POST("/auth/login", h.Auth.Login)

	authed := v1.Group("", middleware.Auth(auth))
	admin := middleware.RequireCapability(domain.CapAdminister)

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/me", h.Auth.Me)

	authed.GET("/dashboard", h.Dashboard.Dashboard)
	authed.GET("/alerts", h.Dashboard.Alerts)

	authed.GET("/customers", h.Customers.List)
	authed.POST("/customers", h.Customers.Create)
	authed.GET("/customers/:id", h.Customers.Get)
	authed.PUT("/customers/:id", h.Customers.Update)
	authed.DELETE("/customers/:id", h.Customers.Delete)
	authed.GET("/customers/:id/detail", h.Customers.Detail)
	authed.GET("/customers/:id/timeline", h.Customers.Timeline)
	authed.GET("/customers/:id/draft-order", h.Customers.DraftOrder)

	authed.GET("/products", h.Products.List)
	authed.POST("/products", h.Products.Create)
	authed.GET("/products/:id", h.Products.Get)
	authed.PUT("/products/:id", h.Products.Update)
	authed.DELETE("/products/:id", h.Products.Delete)

	authed.GET("/assets", h.Assets.List)
	authed.POST("/assets", h.Assets.Create)
	authed.GET("/assets/:id", h.Assets.Get)
	authed.PUT("/assets/:id", h.Assets.Update)
	authed.DELETE("/assets/:id", h.Assets.Delete)
	authed.GET("/assets/:id/draft-order", h.Assets.DraftOrder)

	authed.GET("/service-orders", h.ServiceOrders.List)
	authed.POST("/service-orders", h.ServiceOrders.Create)
	authed.GET("/service-orders/:id", h.ServiceOrders.Get)
	authed.PUT("/service-orders/:id", h.ServiceOrders.Update)
	authed.DELETE("/service-orders/:id", h.ServiceOrders.Delete)
	authed.POST("/service-orders/:id/complete", h.ServiceOrders.Complete)

	authed.GET("/technicians", h.Users.Technicians)

	users := authed.Group("/users", admin)
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	authed.GET("/roles", h.Roles.List)
	authed.POST("/roles", h.Roles.Create, admin)
	authed.PUT("/roles/:id", h.Roles.Update, admin)
	authed.DELETE("/roles/:id", h.Roles.Delete, admin)

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
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
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
