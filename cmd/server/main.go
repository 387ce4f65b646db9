package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/wms/backend/internal/application/catalog"
	identityapp "github.com/wms/backend/internal/application/identity"
	partnerapp "github.com/wms/backend/internal/application/partner"
	tradeapp "github.com/wms/backend/internal/application/trade"
	"github.com/wms/backend/internal/domain/trade"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/cache"
	"github.com/wms/backend/internal/infrastructure/config"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/infrastructure/printing"
	"github.com/wms/backend/internal/infrastructure/storage"
	"github.com/wms/backend/internal/infrastructure/telemetry"
	"github.com/wms/backend/internal/interfaces/http/handler"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"github.com/wms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

//go:generate swag init -g main.go -d ./,../../internal/interfaces/http/handler,../../internal/application,../../internal/domain,../../internal/interfaces/http/dto -o ../../docs --outputTypes go,json --parseInternal

//	@title			WMS Backend API
//	@version		1.0
//	@description	Warehouse and order management API: customers, warehouses, carriers, materials and orders.

//	@BasePath	/api

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log export: " + err.Error())
	}
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logProvider.ZapCore())
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting WMS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if db.Driver == "sqlite" {
		// postgres schemas are owned by wmsctl migrate
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if err := persistence.NewSeeder(db.DB, log).Seed(ctx, persistence.SeedInput{}); err != nil {
		log.Fatal("Failed to seed statuses", zap.Error(err))
	}
	if err := telemetry.EnableDBTracing(db.DB, cfg.Telemetry, dbSystem(db.Driver), log); err != nil {
		log.Fatal("Failed to enable database tracing", zap.Error(err))
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	if cfg.Telemetry.MetricsEnabled {
		if err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
			log.Fatal("Failed to register pool metrics", zap.Error(err))
		}
	}

	// Redis is optional; without it tokens are revoked per process
	var rdb *redis.Client
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = rdb.Close()
		}()
		blacklist = auth.NewRedisTokenBlacklist(rdb)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	carrierRepo := persistence.NewGormCarrierRepository(db.DB)
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	statusRepo := persistence.NewGormStatusRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus with its subscribers
	eventBus := event.NewInMemoryEventBus(log)
	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	eventBus.Subscribe(businessMetrics)
	if cfg.Kafka.Enabled {
		forwarder := event.NewKafkaForwarder(event.NewKafkaWriter(cfg.Kafka), log)
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Error("Error closing Kafka writer", zap.Error(err))
			}
		}()
		eventBus.Subscribe(forwarder)
		log.Info("Forwarding domain events to Kafka", zap.String("topic", cfg.Kafka.Topic))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	customerService := partnerapp.NewCustomerService(customerRepo, projectRepo, userRepo, txScope, eventBus, log)
	warehouseService := partnerapp.NewWarehouseService(warehouseRepo, customerRepo, txScope, eventBus, log)
	accountService := partnerapp.NewAccountService(accountRepo, customerRepo)
	carrierService := partnerapp.NewCarrierService(carrierRepo)
	materialService := catalogapp.NewMaterialService(materialRepo, customerRepo, projectRepo)
	statusService := catalogapp.NewStatusService(statusRepo)

	orderService := tradeapp.NewOrderService(tradeapp.OrderRepositories{
		Orders:     orderRepo,
		Customers:  customerRepo,
		Projects:   projectRepo,
		Warehouses: warehouseRepo,
		Carriers:   carrierRepo,
		Accounts:   accountRepo,
		Materials:  materialRepo,
	}, orderNumbers(cfg.Order, orderRepo, rdb, log), cfg.Order, log)
	orderService.SetEventPublisher(eventBus)

	if cfg.Printing.Enabled {
		renderer := printing.NewChromedpRenderer(cfg.Printing, log)
		defer func() {
			_ = renderer.Close()
		}()
		printer, err := printing.NewSlipPrinter(cfg.Printing, renderer)
		if err != nil {
			log.Fatal("Failed to configure packing slips", zap.Error(err))
		}
		orderService.SetSlipPrinter(printer)
	}
	if cfg.Storage.Enabled {
		store, err := storage.NewS3Store(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to configure object storage", zap.Error(err))
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare storage bucket", zap.Error(err))
		}
		orderService.SetSlipStore(store)
	}

	// HTTP
	opts := router.Options{
		HTTP:           cfg.HTTP,
		Telemetry:      cfg.Telemetry,
		HSTS:           cfg.App.IsProduction(),
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.HTTP.SwaggerEnabled,
			RequireAuth: cfg.HTTP.SwaggerRequireAuth,
			AllowedIPs:  cfg.HTTP.SwaggerAllowedIPs,
		},
		Logger: log,
	}
	if cfg.Telemetry.MetricsEnabled {
		opts.Meter = meter
	}
	var healthRedis redis.UniversalClient
	if rdb != nil {
		healthRedis = rdb
	}
	engine, err := router.New(opts, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Status:    handler.NewStatusHandler(statusService),
		Customer:  handler.NewCustomerHandler(customerService, accountService, warehouseService),
		Material:  handler.NewMaterialHandler(materialService),
		Warehouse: handler.NewWarehouseHandler(warehouseService),
		Carrier:   handler.NewCarrierHandler(carrierService),
		Order:     handler.NewOrderHandler(orderService),
		Health:    handler.NewHealthHandler(sqlDB, healthRedis, version),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing traces", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing metrics", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// orderNumbers picks the order-number generator for the configured backend.
// The redis backend falls back to the database when Redis is not connected.
func orderNumbers(cfg config.OrderConfig, orders trade.OrderRepository, rdb *redis.Client, log *zap.Logger) trade.OrderNumberGenerator {
	dbGenerator := persistence.NewDBOrderNumberGenerator(orders)
	if cfg.SequenceBackend != "redis" {
		return dbGenerator
	}
	if rdb == nil {
		log.Warn("Order sequence backend is redis but Redis is disabled; using the database")
		return dbGenerator
	}
	return cache.NewRedisOrderSequence(rdb, dbGenerator.LastSequence, log)
}

func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}
