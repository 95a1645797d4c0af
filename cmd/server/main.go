package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/propreg/api/internal/config"
	"github.com/propreg/api/internal/database"
	"github.com/propreg/api/internal/handlers"
	"github.com/propreg/api/internal/lock"
	"github.com/propreg/api/internal/logger"
	"github.com/propreg/api/internal/middleware"
	"github.com/propreg/api/internal/models"
	"github.com/propreg/api/internal/notification"
	"github.com/propreg/api/internal/repository"
	"github.com/propreg/api/internal/scheduler"
	"github.com/propreg/api/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	startupTimeout  = 10 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting property register API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"storage":     cfg.Database.Driver,
	})

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Wire the storage driver
	var (
		db        *database.Database
		ownerRepo repository.OwnerRepository
		rateRepo  repository.TaxRateRepository
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to run migrations", err, nil)
		}

		ownerRepo = repository.NewPostgresOwnerRepository(db)
		rateRepo = repository.NewPostgresTaxRateRepository(db)

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
		})
	default:
		ownerRepo = repository.NewMemoryOwnerRepository()
		rateRepo = repository.NewMemoryTaxRateRepository()
	}

	// Seed the rate table: the calculator refuses to run without exactly
	// one row per category.
	if err := rateRepo.Seed(ctx, models.DefaultTaxRates()); err != nil {
		log.Fatal("Failed to seed tax rates", err, nil)
	}

	// Wire the notification bus
	var bus notification.Bus
	if len(cfg.Kafka.Brokers) > 0 {
		bus, err = notification.NewKafkaBus(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Fatal("Failed to connect to kafka", err, map[string]interface{}{
				"brokers": cfg.Kafka.Brokers,
				"topic":   cfg.Kafka.Topic,
			})
		}
		log.Info("Notification bus connected", map[string]interface{}{
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.Topic,
		})
	} else {
		bus = notification.NewLogBus(log)
		log.Warn("No kafka brokers configured, notifications are logged only", nil)
	}
	defer bus.Close()

	// Wire the recalculation lock
	var locker lock.Locker
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal("Failed to parse redis URL", err, nil)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", err, nil)
		}
		defer redisClient.Close()

		locker = lock.NewRedisLocker(redisClient)
		log.Info("Redis lock configured", nil)
	} else {
		locker = lock.NewLocalLocker()
	}

	// Initialize service layer
	taxService := services.NewTaxService(ownerRepo, rateRepo, log)
	ownerService := services.NewOwnerService(ownerRepo, log)
	debtService := services.NewDebtService(ownerRepo, cfg.Recalc.OwnerTimeout, log)
	notifierService := services.NewNotifierService(ownerRepo, bus, log)

	// Start the periodic debt recalculation
	recalcScheduler := scheduler.New(debtService, locker, cfg.Recalc.Interval, log)
	recalcScheduler.Start()
	defer recalcScheduler.Stop()

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes. The memory driver has no store to
	// ping, so the handler takes a nil Pinger in that mode.
	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}
	healthHandler := handlers.NewHealthHandler(pinger, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	ownerHandler := handlers.NewOwnerHandler(ownerService, taxService)
	propertyHandler := handlers.NewPropertyHandler(ownerService)
	taxRateHandler := handlers.NewTaxRateHandler(taxService)
	debtorHandler := handlers.NewDebtorHandler(debtService, notifierService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		owners := v1.Group("/owners")
		{
			owners.GET("", ownerHandler.List)
			owners.POST("", ownerHandler.Create)
			owners.GET("/:id", ownerHandler.Get)
			owners.PUT("/:id", ownerHandler.Update)
			owners.DELETE("/:id", ownerHandler.Delete)
			owners.GET("/:id/obligation", ownerHandler.Obligation)

			owners.GET("/:id/properties", propertyHandler.List)
			owners.POST("/:id/properties", propertyHandler.Create)
			owners.PUT("/:id/properties/:propertyID", propertyHandler.Update)
			owners.DELETE("/:id/properties/:propertyID", propertyHandler.Delete)
		}

		rates := v1.Group("/tax-rates")
		{
			rates.GET("", taxRateHandler.List)
			rates.PUT("/:category", taxRateHandler.Change)
		}

		debtors := v1.Group("/debtors")
		{
			debtors.GET("", debtorHandler.List)
			debtors.POST("/recalculate", debtorHandler.Recalculate)
			debtors.POST("/notify", debtorHandler.NotifyAll)
			debtors.POST("/:id/notify", debtorHandler.NotifyOne)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
