package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-eval-api/api/swagger"
	"github.com/noah-isme/course-eval-api/internal/handler"
	"github.com/noah-isme/course-eval-api/internal/middleware"
	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/repository"
	"github.com/noah-isme/course-eval-api/internal/service"
	"github.com/noah-isme/course-eval-api/pkg/cache"
	"github.com/noah-isme/course-eval-api/pkg/config"
	"github.com/noah-isme/course-eval-api/pkg/database"
	"github.com/noah-isme/course-eval-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-eval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-eval-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-eval-api/pkg/response"
)

// @title Course Evaluation API
// @version 1.0.0
// @description Action-dispatch backend for the course evaluation form
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		redisClient = nil
	}

	courseRepo := repository.NewCourseRepository(db)
	sheetRepo := repository.NewSheetRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := courseRepo.EnsureSchema(ctx); err != nil {
		logr.Fatal("failed to prepare courses schema", zap.Error(err))
	}
	if err := sheetRepo.EnsureSchema(ctx); err != nil {
		logr.Fatal("failed to prepare sheet registry", zap.Error(err))
	}

	roster := models.DefaultRosterTemplate(cfg.Roster.Weeks)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	authSvc := service.NewAuthService(cfg.Auth, logr)
	courseSvc := service.NewCourseService(courseRepo, sheetRepo, evaluationRepo, instructorRepo,
		cacheSvc, metricsSvc, roster, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, sheetRepo, cacheSvc, metricsSvc, logr)
	statsSvc := service.NewStatsService(evaluationRepo, sheetRepo, courseRepo, cacheSvc, metricsSvc, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, sheetRepo, metricsSvc, nil, roster, logr)
	exportSvc := service.NewExportService(evaluationSvc, statsSvc, logr)

	var healthSvc *service.HealthService
	if redisClient != nil {
		healthSvc = service.NewHealthService(db, cacheRepo, sheetRepo, metricsSvc, logr)
	} else {
		healthSvc = service.NewHealthService(db, nil, sheetRepo, metricsSvc, logr)
	}

	actionHandler := handler.NewActionHandler(courseSvc, evaluationSvc, statsSvc, instructorSvc,
		healthSvc, metricsSvc, logr)
	authHandler := handler.NewAuthHandler(authSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, healthSvc.Status(c.Request.Context()))
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	exec := r.Group("/exec", middleware.OptionalJWT(authSvc))
	exec.GET("", actionHandler.Get)
	exec.POST("", actionHandler.Post)

	r.POST("/auth/login", authHandler.Login)

	if cfg.Exports.Enabled {
		exports := r.Group("/exports", middleware.JWT(authSvc))
		exports.GET("/evaluations.csv", exportHandler.EvaluationsCSV)
		exports.GET("/stats.pdf", exportHandler.StatsPDF)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
