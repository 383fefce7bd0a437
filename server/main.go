package main

import (
	"cineseat/api/routes"
	"cineseat/internal/inventory"
	"cineseat/internal/notifications"
	"cineseat/internal/shared/config"
	"cineseat/internal/shared/database"
	"cineseat/pkg/logger"
	"cineseat/pkg/ratelimit"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load environment variables
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		// Check if we're in production/container mode
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
	}
	defer db.Close()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:          cfg.RateLimit.Enabled,
			WindowDuration:   cfg.RateLimit.WindowDuration,
			DefaultRequests:  cfg.RateLimit.DefaultRequests,
			PublicRequests:   cfg.RateLimit.PublicRequests,
			HoldRequests:     cfg.RateLimit.HoldRequests,
			CheckoutRequests: cfg.RateLimit.CheckoutRequests,
			AdminRequests:    cfg.RateLimit.AdminRequests,
			HealthRequests:   cfg.RateLimit.HealthRequests,
			WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Kafka producer for ticket-issued events (optional)
	producer, err := notifications.NewTicketProducer(cfg.Kafka)
	if err != nil {
		appLogger.Error("Failed to initialize ticket producer", slog.Any("error", err))
		appLogger.Info("Continuing without ticket events - finalized orders will not be published")
		producer = nil
	}
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				appLogger.Error("Error closing ticket producer", slog.Any("error", err))
			}
		}()
		appLogger.Info("Ticket producer initialized", slog.String("topic", cfg.Kafka.TicketTopic))
	}

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, producer)
	router := setupRouter(cfg, rateLimiter, appRouter)

	// Background sweep of lapsed holds. Reads already treat lapsed holds as
	// available, the janitor just keeps the seats table tidy.
	if cfg.Janitor.Enabled {
		janitor, err := inventory.NewJanitor(appRouter.InventoryRepository(), cfg.Janitor.SweepInterval)
		if err != nil {
			appLogger.Error("Failed to initialize hold janitor", slog.Any("error", err))
		} else {
			janitor.Start()
			defer func() {
				if err := janitor.Stop(); err != nil {
					appLogger.Error("Error stopping hold janitor", slog.Any("error", err))
				}
			}()
			appLogger.Info("Hold janitor started", slog.Duration("interval", cfg.Janitor.SweepInterval))
		}
	}

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", (db.Redis != nil)),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, rateLimiter *ratelimit.RateLimiter, appRouter *routes.Router) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
