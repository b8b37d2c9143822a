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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/MatthijsVer/company-manager/internal/adapter/handler"
	"github.com/MatthijsVer/company-manager/internal/adapter/repository"
	"github.com/MatthijsVer/company-manager/internal/infrastructure/cache"
	"github.com/MatthijsVer/company-manager/internal/infrastructure/database"
	"github.com/MatthijsVer/company-manager/internal/infrastructure/external/transcription"
	"github.com/MatthijsVer/company-manager/internal/infrastructure/storage"
	extractionUsecase "github.com/MatthijsVer/company-manager/internal/usecase/extraction"
	meetingUsecase "github.com/MatthijsVer/company-manager/internal/usecase/meeting"
	pkgai "github.com/MatthijsVer/company-manager/pkg/ai"
	"github.com/MatthijsVer/company-manager/pkg/config"
	"github.com/MatthijsVer/company-manager/pkg/jwt"
	pkgvalidator "github.com/MatthijsVer/company-manager/pkg/validator"
)

// @title           Company Manager API
// @version         1.0
// @description     API for turning meeting recordings into tasks, notes, time entries and minutes

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if cfg.Server.Environment != "production" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Schema changes go through sql-migrate; automatic application is
	// opt-in and refused in production.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("DB_AUTO_MIGRATE is enabled in production; manage schema with sql-migrate instead")
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	previewCache := cache.NewPreviewCache(redisClient, 24*time.Hour)

	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Repositories
	meetingRepo := repository.NewMeetingRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	extractionRepo := repository.NewExtractionRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Extraction and pipeline services
	llmClient := pkgai.NewExtractionClient(&cfg.Extraction)
	extractor := extractionUsecase.NewService(llmClient, logger)
	transcriber := transcription.NewAssemblyAI(&cfg.Assembly, logger)
	pipeline := meetingUsecase.NewPipeline(meetingRepo, extractionRepo, extractor, transcriber, previewCache, logger)

	resolver := meetingUsecase.NewResolver(companyRepo, userRepo)
	coordinator := meetingUsecase.NewCoordinator(db, meetingRepo, resolver, extractor, previewCache, minioClient, logger)

	// JWT manager
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Handlers
	meetingHandler := handler.NewMeetingHandler(meetingRepo, taskRepo, pipeline, logger)
	extractionHandler := handler.NewExtractionHandler(pipeline, coordinator, logger)
	documentHandler := handler.NewDocumentHandler(documentRepo, minioClient, logger)

	router := handler.NewRouter(cfg, jwtManager, meetingHandler, extractionHandler, documentHandler)
	router.Setup(e)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("starting server on %s (environment: %s)", addr, cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("server stopped")
}
