package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "restopos/docs"

	"restopos/internal/caching"
	"restopos/internal/config"
	"restopos/internal/handlers"
	"restopos/internal/jobs/background"
	"restopos/internal/logging"
	"restopos/internal/messaging"
	"restopos/internal/middleware"
	"restopos/internal/repositories"
	"restopos/internal/services"
	"restopos/internal/storage"
	"restopos/pkg/database"
)

const version = "1.0.0"

// @title restopos API
// @version 1.0
// @description Table and order lifecycle for restaurant point of sale.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	var authenticate echo.MiddlewareFunc
	if cfg.JWT.JWKSURL != "" {
		jwks, err := middleware.NewJWKS(ctx, cfg.JWT.JWKSURL, logger)
		if err != nil {
			logger.Fatal("failed to load signing keys", zap.Error(err))
		}
		authenticate = middleware.Authenticate(middleware.KeyfuncConfig(jwks.Keyfunc))
	} else {
		jwtSecret := cfg.JWT.Secret
		if jwtSecret == "" {
			jwtSecret = random.String(32)
			logger.Warn("JWT_SECRET not set, using a generated secret; issued tokens will not survive a restart")
		}
		authenticate = middleware.JWTMiddleware(jwtSecret)
	}

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	defer func() { _ = cacheSvc.Close() }()

	var publisher messaging.EventPublisher = messaging.NoopPublisher{}
	if cfg.RabbitMQ.Enabled() {
		conn, err := messaging.NewConnection(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		publisher = messaging.NewPublisher(conn, logger)
	} else {
		logger.Info("RABBITMQ_URL not set, order events are not published")
	}
	defer func() { _ = publisher.Close() }()

	var receipts storage.ReceiptStore
	var storagePinger handlers.Pinger
	if cfg.Minio.Enabled() {
		receipts, err = storage.NewMinioReceiptStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket)
		if err != nil {
			logger.Fatal("failed to initialize receipt storage", zap.Error(err))
		}
		if err := receipts.EnsureBucketExists(ctx); err != nil {
			logger.Fatal("failed to prepare receipt bucket", zap.String("bucket", cfg.Minio.Bucket), zap.Error(err))
		}
		storagePinger = receipts
	} else {
		logger.Info("MINIO_ENDPOINT not set, receipts are not archived")
	}

	store := repositories.NewStore(pool)
	lifecycle := services.NewLifecycle(publisher, receipts, cacheSvc, logger)

	productSvc := services.NewProductService(store.Products(), store.Categories(), cacheSvc, cfg.Redis.ProductTTL, logger)
	categorySvc := services.NewCategoryService(store.Categories())
	customerSvc := services.NewCustomerService(store.Customers())
	tableSvc := services.NewTableService(store, lifecycle, logger)
	tableOrderSvc := services.NewTableOrderService(store, productSvc, lifecycle, logger)
	orderSvc := services.NewOrderService(store, productSvc, lifecycle, logger)
	dashboardSvc := services.NewDashboardService(store, cacheSvc, 2*cfg.Jobs.DashboardRefresh, logger)

	scheduler, err := background.NewJobScheduler(dashboardSvc, cacheSvc, cfg.Jobs.DashboardRefresh, logger)
	if err != nil {
		logger.Fatal("failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Error("failed to stop job scheduler", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storagePinger, version)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := versionMiddleware.VersionRoute(e, "v1")
	v1.Use(authenticate)

	router := &handlers.Router{
		Tables:      handlers.NewTableHandlers(tableSvc),
		TableOrders: handlers.NewTableOrderHandlers(tableOrderSvc),
		Orders:      handlers.NewOrderHandlers(orderSvc, receipts),
		Products:    handlers.NewProductHandlers(productSvc),
		Categories:  handlers.NewCategoryHandlers(categorySvc),
		Customers:   handlers.NewCustomerHandlers(customerSvc),
		Dashboard:   handlers.NewDashboardHandlers(dashboardSvc),
		Jobs:        handlers.NewJobHandlers(scheduler),
	}
	router.Register(v1)

	go func() {
		logger.Info("restopos server starting", zap.String("version", version), zap.Int("port", cfg.Server.Port))
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
