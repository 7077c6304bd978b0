package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	eventapp "github.com/mfin/backend/internal/application/event"
	lendingapp "github.com/mfin/backend/internal/application/lending"
	"github.com/mfin/backend/internal/domain/shared"
	"github.com/mfin/backend/internal/infrastructure/cache"
	"github.com/mfin/backend/internal/infrastructure/config"
	"github.com/mfin/backend/internal/infrastructure/event"
	"github.com/mfin/backend/internal/infrastructure/logger"
	"github.com/mfin/backend/internal/infrastructure/persistence"
	"github.com/mfin/backend/internal/interfaces/http/handler"
	"github.com/mfin/backend/internal/interfaces/http/middleware"
	"github.com/mfin/backend/internal/interfaces/http/router"
)

//	@title			Lending Service API
//	@version		1.0
//	@description	Micro-finance loan lifecycle and portfolio management API

//	@contact.name	API Support
//	@contact.url	https://github.com/mfin/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
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

	log.Info("Starting lending service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormLoanProductRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	repaymentRepo := persistence.NewGormRepaymentRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Command transactions carry their outbox writes: events land in the
	// outbox table on the same transaction as the aggregate changes and are
	// delivered to the event bus by the outbox processor
	txScope := persistence.NewGormTransactionScope(db.DB, eventSerializer)

	// Initialize application services
	loanService := lendingapp.NewLoanService(lendingapp.LoanServiceConfig{
		TxScope:         txScope,
		ProductRepo:     productRepo,
		LoanRepo:        loanRepo,
		InstallmentRepo: installmentRepo,
		RepaymentRepo:   repaymentRepo,
		Logger:          log,
	})
	portfolioService := lendingapp.NewPortfolioService(loanRepo, installmentRepo, shared.SystemClock{}, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Member and operations notifications for lifecycle events. Logging is
	// safe under redelivery, so this subscriber is not wrapped.
	eventBus.Subscribe(lendingapp.NewLoanNotificationHandler(log))

	// Close fully repaid loans automatically (if enabled). The handler is
	// wrapped for idempotency since outbox delivery is at-least-once.
	if cfg.Lending.AutoCloseSettled {
		idempotencyStore := newIdempotencyStore(cfg, log)
		settledHandler := lendingapp.NewLoanSettledHandler(loanService, log)
		eventBus.Subscribe(event.NewIdempotentHandler(settledHandler, idempotencyStore, log))
		log.Info("Auto-close of settled loans enabled",
			zap.Strings("events", settledHandler.EventTypes()))
	}

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start the outbox processor for guaranteed event delivery
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Initialize HTTP handlers
	productHandler := handler.NewLoanProductHandler(loanService)
	loanHandler := handler.NewLoanHandler(loanService)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)
	outboxHandler := handler.NewOutboxHandler(outboxService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoints (outside API versioning). /health is liveness,
	// /ready additionally requires a reachable database.
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	engine.GET("/ready", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Lending domain (products, loans, portfolio)
	lendingRoutes := router.NewDomainGroup("lending", "/lending")
	lendingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "lending service ready"})
	})

	// Loan product routes
	lendingRoutes.POST("/products", productHandler.Create)
	lendingRoutes.GET("/products", productHandler.List)
	lendingRoutes.GET("/products/:id", productHandler.GetByID)
	lendingRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)

	// Loan lifecycle routes
	lendingRoutes.POST("/loans", loanHandler.Create)
	lendingRoutes.GET("/loans", loanHandler.List)
	lendingRoutes.GET("/loans/:id", loanHandler.GetByID)
	lendingRoutes.POST("/loans/:id/approve", loanHandler.Approve)
	lendingRoutes.POST("/loans/:id/reject", loanHandler.Reject)
	lendingRoutes.POST("/loans/:id/cancel", loanHandler.Cancel)
	lendingRoutes.POST("/loans/:id/disburse", loanHandler.Disburse)
	lendingRoutes.POST("/loans/:id/close", loanHandler.Close)
	lendingRoutes.POST("/loans/:id/write-off", loanHandler.WriteOff)

	// Repayment and schedule routes
	lendingRoutes.POST("/loans/:id/repayments", loanHandler.RecordRepayment)
	lendingRoutes.GET("/loans/:id/repayments", loanHandler.GetRepayments)
	lendingRoutes.GET("/loans/:id/schedule", loanHandler.GetSchedule)
	lendingRoutes.GET("/loans/:id/outstanding", loanHandler.GetOutstanding)
	lendingRoutes.GET("/loans/:id/risk", loanHandler.ClassifyRisk)

	// Portfolio reporting routes
	lendingRoutes.GET("/portfolio/summary", portfolioHandler.Summary)

	// System routes (info, ping, outbox administration)
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/dead-letters", outboxHandler.GetDeadLetterEntries)
	systemRoutes.GET("/outbox/entries/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/entries/:id/retry", outboxHandler.RetryDeadEntry)
	systemRoutes.POST("/outbox/dead-letters/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)

	// Register all domain groups
	r.Register(lendingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newIdempotencyStore picks Redis when configured, otherwise falls back to
// the in-process store. A single instance with the in-memory store is safe;
// replicas need Redis so deliveries dedupe across processes.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Host == "" {
		log.Info("Using in-memory idempotency store")
		return cache.NewInMemoryIdempotencyStore()
	}

	store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
		return cache.NewInMemoryIdempotencyStore()
	}
	log.Info("Using Redis idempotency store",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port))
	return store
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
