package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/launcify/launcify-api/config"
	"github.com/launcify/launcify-api/internal/handlers"
	"github.com/launcify/launcify-api/internal/middleware"
	"github.com/launcify/launcify-api/internal/ratelimit"
	"github.com/launcify/launcify-api/internal/repository"
	"github.com/launcify/launcify-api/internal/services"
	"github.com/launcify/launcify-api/pkg/db"
	"github.com/launcify/launcify-api/pkg/httpclient"
	"github.com/launcify/launcify-api/pkg/llm"
	"github.com/launcify/launcify-api/pkg/logger"
	"github.com/launcify/launcify-api/pkg/metrics"
	"github.com/launcify/launcify-api/pkg/profiling"
	"github.com/launcify/launcify-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Launcify API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Initialize metrics
	metrics.Init()
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool for lead recording. Absence of a
	// DATABASE_URL is a supported configuration: leads are skipped.
	var pool *pgxpool.Pool
	var leadStore services.LeadStore
	if cfg.LeadStoreConfigured() {
		pool, err = db.NewPool(context.Background(), db.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
		}
		defer db.Close(pool)
		leadStore = repository.NewLeadRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not configured, lead recording disabled")
	}

	// Fixed-window rate limiter for the generation endpoints. With REDIS_ADDR
	// set the counter is shared across instances; otherwise the in-process
	// store applies (single instance only).
	limiterOpts := ratelimit.Options{
		Limit:  cfg.RateLimit.Limit,
		Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	}
	if cfg.RateLimit.RedisAddr != "" {
		redisClient := ratelimit.NewRedisClient(context.Background(),
			cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		defer redisClient.Close()
		limiterOpts.Shared = ratelimit.NewRedisStore(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not configured, rate limiting is per-instance only")
	}
	limiter := ratelimit.New(limiterOpts)

	// Initialize HTTP client and the completion gateway
	httpClient := httpclient.NewStandardClient()
	completions := llm.NewClient(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, httpClient)

	// Initialize services and handlers
	validator := services.NewResultValidator(cfg.Validation.Mode)
	generationService := services.NewGenerationService(completions, leadStore, validator, cfg.Server.SiteBaseURL)
	generateHandler := handlers.NewGenerateHandler(generationService)

	dbReady := func() bool { return true }
	if pool != nil {
		dbReady = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(ctx) == nil
		}
	}
	healthHandler := handlers.NewHealthHandler(dbReady)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only the marketing site origins may call the API
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}))

	// Coarse throttle for operational endpoints
	generalThrottle := middleware.NewThrottle(100, 200)

	api := router.Group("/api")
	api.GET("/healthcheck", generalThrottle.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalThrottle.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Generation endpoints: fixed-window limit per caller IP, small bodies only
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimitMiddleware(limiter))
	v1.Use(middleware.BodySizeLimitMiddleware(100 * 1024))
	v1.POST("/strategy", generateHandler.GenerateStrategy)
	v1.POST("/estimate", generateHandler.GenerateEstimate)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // must outlast the longest model call
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
