package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cleaningapp "github.com/seedledger/backend/internal/application/cleaning"
	ledgerapp "github.com/seedledger/backend/internal/application/ledger"
	"github.com/seedledger/backend/internal/infrastructure/cache"
	"github.com/seedledger/backend/internal/infrastructure/config"
	"github.com/seedledger/backend/internal/infrastructure/logger"
	"github.com/seedledger/backend/internal/infrastructure/persistence"
	"github.com/seedledger/backend/internal/infrastructure/telemetry"
	"github.com/seedledger/backend/internal/interfaces/http/handler"
	"github.com/seedledger/backend/internal/interfaces/http/middleware"
	"github.com/seedledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Seed Ledger Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	gormLogLevel := gormlogger.Silent
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.Connect(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.TraceSQL,
		DBName:          cfg.Database.DBName,
		SlowQueryThresh: 200 * time.Millisecond,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	entryRepo := persistence.NewGormEntryRepository(db.DB)
	movementRepo := persistence.NewGormTransactionRepository(db.DB)
	operationRepo := persistence.NewGormOperationRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Availability cache: Redis when configured, in-process otherwise
	var availabilityCache ledgerapp.AvailabilityCache
	if cfg.Redis.Enabled() {
		redisCache, err := cache.NewRedisAvailabilityCache(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		availabilityCache = redisCache
		log.Info("Redis availability cache enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		availabilityCache = cache.NewInMemoryAvailabilityCache()
		log.Info("In-memory availability cache enabled")
	}

	// Initialize application services
	ledgerService := ledgerapp.NewLedgerService(entryRepo, movementRepo, txScope, availabilityCache, log)
	cleaningService := cleaningapp.NewCleaningService(operationRepo, entryRepo, txScope, availabilityCache, log)

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	cleaningHandler := handler.NewCleaningHandler(cleaningService)
	systemHandler := handler.NewSystemHandler(db.Ping, func() (handler.PoolStats, error) {
		stats, err := db.Stats()
		if err != nil {
			return handler.PoolStats{}, err
		}
		return handler.PoolStats{
			MaxOpenConnections: stats.MaxOpenConnections,
			OpenConnections:    stats.OpenConnections,
			InUse:              stats.InUse,
			Idle:               stats.Idle,
			WaitCount:          stats.WaitCount,
		}, nil
	})

	// Set up gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	middleware.SetupValidator()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check outside the versioned API
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Register domain route groups
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/entries/intake", ledgerHandler.RecordIntake)
	ledgerRoutes.POST("/entries/withdrawals", ledgerHandler.RequestWithdrawal)
	ledgerRoutes.GET("/entries", ledgerHandler.ListEntries)
	ledgerRoutes.GET("/entries/:id", ledgerHandler.GetEntry)
	ledgerRoutes.GET("/entries/:id/balances", ledgerHandler.GetBalances)
	ledgerRoutes.GET("/entries/:id/movements", ledgerHandler.ListMovements)
	ledgerRoutes.PATCH("/entries/:id/date", ledgerHandler.ChangeEntryDate)
	ledgerRoutes.GET("/availability", ledgerHandler.GetAvailability)
	r.Register(ledgerRoutes)

	cleaningRoutes := router.NewDomainGroup("cleaning", "/cleaning")
	cleaningRoutes.POST("/operations", cleaningHandler.CreateDraft)
	cleaningRoutes.GET("/operations", cleaningHandler.ListOperations)
	cleaningRoutes.GET("/operations/:id", cleaningHandler.GetOperation)
	cleaningRoutes.PUT("/operations/:id", cleaningHandler.UpdateDraft)
	cleaningRoutes.POST("/operations/:id/checks", cleaningHandler.AddQualityCheck)
	cleaningRoutes.POST("/operations/:id/post", cleaningHandler.Post)
	cleaningRoutes.POST("/operations/:id/reverse", cleaningHandler.Reverse)
	r.Register(cleaningRoutes)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	r.Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
