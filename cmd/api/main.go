package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/inkline-team/inkline/pkg/validator"

	"github.com/inkline-team/inkline/internal/adapter/handler"
	"github.com/inkline-team/inkline/internal/adapter/repository"
	"github.com/inkline-team/inkline/internal/infrastructure/assets"
	"github.com/inkline-team/inkline/internal/infrastructure/cache"
	"github.com/inkline-team/inkline/internal/infrastructure/database"
	"github.com/inkline-team/inkline/internal/infrastructure/storage"
	lessonuse "github.com/inkline-team/inkline/internal/usecase/lesson"
	sessionuse "github.com/inkline-team/inkline/internal/usecase/session"
	"github.com/inkline-team/inkline/pkg/config"
	"github.com/inkline-team/inkline/pkg/tabtoken"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.CloseRedis(redisClient)

	// Initialize object storage
	log.Println("🗄️  Connecting to object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	lessonRepo := repository.NewLessonRepository(db)
	recordRepo := repository.NewSessionRecordRepository(db)
	pointerRepo := repository.NewSessionPointerRepository(redisClient)

	// Initialize asset resolver
	log.Println("🖼️  Initializing asset resolver...")
	assetResolver := assets.NewResolver(minioClient, logger)

	// Initialize tab token manager
	log.Println("🔑 Initializing tab token manager...")
	tokenManager := tabtoken.NewManager(cfg.TabToken.Secret, cfg.TabToken.Expiry)

	// Initialize services
	log.Println("✨ Initializing services...")
	lessonService := lessonuse.NewService(lessonRepo, assetResolver, logger)
	sessionService := sessionuse.NewService(
		recordRepo,
		pointerRepo,
		logger,
		cfg.Session.StaleTimeout,
		cfg.Session.StorageOpTimeout,
	)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	tabHandler := handler.NewTab(tokenManager, cache.NewMemoryStore(), cfg.TabToken.Expiry)
	lessonHandler := handler.NewLesson(lessonService)
	sessionHandler := handler.NewSession(sessionService)
	channelHandler := handler.NewChannel(
		lessonService,
		sessionService,
		tokenManager,
		logger,
		cfg.Playback.Tolerance.Seconds(),
		cfg.Session.DebounceWindow,
	)
	uploadHandler := handler.NewUpload(minioClient)
	log.Println("✅ Handlers initialized successfully")

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, tokenManager, tabHandler, lessonHandler, sessionHandler, channelHandler, uploadHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
