package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/wms/backend/docs"
	"github.com/wms/backend/internal/domain/identity"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by New
type Handlers struct {
	Auth      *handler.AuthHandler
	Status    *handler.StatusHandler
	Customer  *handler.CustomerHandler
	Material  *handler.MaterialHandler
	Warehouse *handler.WarehouseHandler
	Carrier   *handler.CarrierHandler
	Order     *handler.OrderHandler
	Health    *handler.HealthHandler
}

// Options configures the engine built by New
type Options struct {
	HTTP      config.HTTPConfig
	Telemetry config.TelemetryConfig
	// HSTS enables Strict-Transport-Security, for deployments behind TLS
	HSTS           bool
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	Swagger        middleware.SwaggerConfig
	// Meter enables HTTP metrics when set
	Meter  metric.Meter
	Logger *zap.Logger
}

// Engine is the configured gin engine. Close releases background resources.
type Engine struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops the rate limiter cleanup loops
func (e *Engine) Close() {
	for _, l := range e.limiters {
		l.Stop()
	}
}

// New builds the gin engine with the middleware chain and all API routes
func New(opts Options, h Handlers) (*Engine, error) {
	if err := middleware.SetupValidator(); err != nil {
		return nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}
	e := &Engine{Engine: engine}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(opts.Logger),
		logger.Recovery(opts.Logger),
		middleware.Tracing(opts.Telemetry.ServiceName, opts.Telemetry.Enabled),
		middleware.SpanErrorMarker(),
		middleware.Secure(opts.HSTS),
		middleware.CORS(opts.HTTP),
		middleware.BodyLimit(opts.HTTP.MaxBodySize),
	)
	if opts.Meter != nil {
		metrics, err := middleware.HTTPMetrics(opts.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}
	if opts.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow)
		e.limiters = append(e.limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
	}

	authenticated := []gin.HandlerFunc{
		middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService:     opts.JWTService,
			TokenBlacklist: opts.TokenBlacklist,
			Logger:         opts.Logger,
		}),
		middleware.TracingAttributeInjector(),
	}

	engine.GET("/health", h.Health.Check)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger, authenticated...),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	loginChain := []gin.HandlerFunc{}
	if opts.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(opts.HTTP.AuthRateLimitRequests, opts.HTTP.AuthRateLimitWindow)
		e.limiters = append(e.limiters, limiter)
		loginChain = append(loginChain, middleware.RateLimit(limiter))
	}

	public := NewDomainGroup("/auth").
		POST("/login", append(loginChain, h.Auth.Login)...).
		POST("/refresh", h.Auth.Refresh)

	NewRouter(engine, "/api").Register(public).Setup()

	admin := middleware.RequireRole(identity.RoleAdmin)

	NewRouter(engine, "/api").Register(
		authRoutes(h.Auth),
		NewDomainGroup("/statuses").GET("", h.Status.List),
		customerRoutes(h.Customer, admin),
		materialRoutes(h.Material, admin),
		warehouseRoutes(h.Warehouse, admin),
		carrierRoutes(h.Carrier, admin),
		orderRoutes(h.Order, admin),
	).Setup(authenticated...)

	return e, nil
}

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	return NewDomainGroup("/auth").
		POST("/logout", h.Logout).
		GET("/me", h.Me).
		PUT("/password", h.ChangePassword)
}

func customerRoutes(h *handler.CustomerHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("/customers").
		GET("", h.List).
		POST("", admin, h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id", admin, h.Update).
		DELETE("/:id", admin, h.Delete).
		GET("/:id/projects", h.ListProjects).
		GET("/:id/users", h.ListUsers).
		GET("/:id/warehouses", h.ListWarehouses)
	g.Group("/:id/accounts").
		GET("", h.ListAccounts).
		POST("", h.CreateAccount).
		PUT("/:accountId", h.UpdateAccount).
		DELETE("/:accountId", h.DeleteAccount)
	return g
}

func materialRoutes(h *handler.MaterialHandler, admin gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("/materials").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", admin, h.Create).
		PUT("/:id", admin, h.Update).
		DELETE("/:id", admin, h.Delete)
}

func warehouseRoutes(h *handler.WarehouseHandler, admin gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("/warehouses").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", admin, h.Create).
		PUT("/:id", admin, h.Update).
		DELETE("/:id", admin, h.Delete).
		PUT("/:id/customers", admin, h.ReplaceCustomers)
}

func carrierRoutes(h *handler.CarrierHandler, admin gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("/carriers").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", admin, h.Create).
		PUT("/:id", admin, h.Update).
		DELETE("/:id", admin, h.Delete)
	g.Group("/:id/services").
		Use(admin).
		POST("", h.CreateService).
		PUT("/:serviceId", h.UpdateService).
		DELETE("/:serviceId", h.DeleteService)
	return g
}

func orderRoutes(h *handler.OrderHandler, admin gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("/orders").
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.GetByID).
		PUT("/:id", h.Update).
		PATCH("/:id/status", admin, h.ChangeStatus).
		POST("/:id/cancel", h.Cancel).
		GET("/:id/packing-slip", h.PackingSlip)
}
