package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"quizdraft/internal/adapter"
	"quizdraft/internal/cache"
	"quizdraft/internal/cms"
	"quizdraft/internal/config"
	"quizdraft/internal/domain"
	"quizdraft/internal/handler"
	"quizdraft/internal/logger"
	"quizdraft/internal/middleware"
	"quizdraft/internal/service"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Process request
		err := c.Next()

		// Log request details
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Pick the response cache backend
	var responseCache domain.Cache
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		appLogger.Info("Successfully connected to Redis")
		responseCache = adapter.NewRedisCacheAdapter(redisClient)
	case "memory":
		responseCache = cache.NewMemoryCache()
		appLogger.Info("Using in-memory response cache")
	default:
		appLogger.Fatal("Unsupported cache backend: " + cfg.Cache.Backend)
	}

	// Initialize the CMS client
	cmsClient := cms.NewClient(cfg.CMS, nil)
	appLogger.Info("CMS client initialized", zap.String("base_url", cfg.CMS.BaseURL))

	// Initialize services
	draftService := service.NewDraftService(cmsClient, responseCache, cfg)
	appLogger.Info("DraftService initialized")

	// Initialize handlers
	draftHandler := handler.NewDraftHandler(draftService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// API group; all authoring routes require a valid access token.
	apiGroup := app.Group("/api", middleware.Protected(cfg.Auth.JWTSecret))
	draftHandler.RegisterRoutes(apiGroup, middleware.NewValidationMiddleware())

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
