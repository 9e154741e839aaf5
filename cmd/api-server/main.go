package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/openxk/course-select-api/api/swagger"
	"github.com/openxk/course-select-api/internal/handler"
	"github.com/openxk/course-select-api/internal/importer"
	"github.com/openxk/course-select-api/internal/middleware"
	"github.com/openxk/course-select-api/internal/models"
	"github.com/openxk/course-select-api/internal/repository"
	"github.com/openxk/course-select-api/internal/service"
	"github.com/openxk/course-select-api/pkg/cache"
	"github.com/openxk/course-select-api/pkg/config"
	"github.com/openxk/course-select-api/pkg/database"
	"github.com/openxk/course-select-api/pkg/logger"
	corsmiddleware "github.com/openxk/course-select-api/pkg/middleware/cors"
	reqidmiddleware "github.com/openxk/course-select-api/pkg/middleware/requestid"
)

// @title Course Select API
// @version 0.1.0
// @description University course selection backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Reads fall through to postgres when redis is unavailable.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, metricsSvc, logr)

	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.JWT.Secret})
	catalogSvc := service.NewCatalogService(courseRepo, importer.NewRegistry(), cacheRepo, cfg.Catalog.CacheTTL, validator.New(), logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, catalogSvc, logr)
	exportSvc := service.NewExportService(enrollmentRepo, logr)

	courseHandler := handler.NewCourseHandler(catalogSvc, metricsSvc, cfg.Catalog.MaxFileSizeBytes)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authed := api.Group("", middleware.JWT(authSvc))

	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)
	authed.POST("/courses/import", middleware.RequireRoles(models.RoleAdmin), courseHandler.Import)

	authed.GET("/enrollments", enrollmentHandler.List)
	authed.POST("/enrollments", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.Select)
	authed.GET("/enrollments/export", enrollmentHandler.Export)
	authed.DELETE("/enrollments/:courseId", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.Drop)
	authed.PATCH("/enrollments/:id/status", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.Review)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
