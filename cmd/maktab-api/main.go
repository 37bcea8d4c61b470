package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/maktabhq/maktab-api/api/swagger"
	"github.com/maktabhq/maktab-api/internal/handler"
	"github.com/maktabhq/maktab-api/internal/middleware"
	"github.com/maktabhq/maktab-api/internal/repository"
	"github.com/maktabhq/maktab-api/internal/service"
	"github.com/maktabhq/maktab-api/pkg/cache"
	"github.com/maktabhq/maktab-api/pkg/config"
	"github.com/maktabhq/maktab-api/pkg/database"
	"github.com/maktabhq/maktab-api/pkg/jobs"
	"github.com/maktabhq/maktab-api/pkg/logger"
	corsmiddleware "github.com/maktabhq/maktab-api/pkg/middleware/cors"
	reqidmiddleware "github.com/maktabhq/maktab-api/pkg/middleware/requestid"
)

// @title Maktab API
// @version 0.1.0
// @description Student curriculum progress engine for madrasa classes
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	progressRepo := repository.NewStudentProgressRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Reports.CacheTTL, logr, true)
	confirmationService := service.NewConfirmationService(cacheRepo, cfg.Curriculum.ConfirmationTTL, logr)
	progressService := service.NewProgressService(progressRepo, auditRepo, confirmationService, logr).WithMetrics(metricsService)
	transitionService := service.NewTransitionService(progressRepo, auditRepo, confirmationService, logr).WithMetrics(metricsService)
	dueService := service.NewDueDateService(progressRepo, logr)
	reportService := service.NewReportService(progressRepo, cacheService, logr)

	sweepQueue := jobs.NewQueue("due-sweep", dueService.HandleSweepJob, jobs.QueueConfig{
		Workers: cfg.DueSweep.Workers,
		Logger:  logr,
	})
	if cfg.DueSweep.Enabled {
		sweepQueue.Start(context.Background())
		defer sweepQueue.Stop()
		if cfg.DueSweep.RunOnStart {
			enqueueSweep(sweepQueue, logr)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	progressHandler := handler.NewProgressHandler(progressService)
	transitionHandler := handler.NewTransitionHandler(transitionService, confirmationService)
	dueHandler := handler.NewDueHandler(dueService)
	reportHandler := handler.NewReportHandler(reportService)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Actor(cfg.JWT.Secret))
	{
		students := api.Group("/students/:id")
		students.GET("/progress/form", progressHandler.Form)
		students.POST("/progress", progressHandler.Submit)
		students.GET("/progress/audit", progressHandler.Audit)

		students.POST("/transitions/quran", transitionHandler.GraduateToQuran)
		students.POST("/transitions/hifz", transitionHandler.GraduateToHifz)
		students.POST("/transitions/skip-to-hifz", transitionHandler.SkipToHifz)
		students.POST("/transitions/move-back", transitionHandler.MoveBackToJuzAmma)

		students.POST("/milestones/propose", transitionHandler.Propose)
		students.POST("/milestones/hafiz", transitionHandler.MarkHafiz)
		students.DELETE("/milestones/hafiz", transitionHandler.UnmarkHafiz)

		api.GET("/progress/due", dueHandler.List)
		api.POST("/progress/due/sweep", dueHandler.Sweep)
		api.POST("/progress/due/skip", dueHandler.Skip)

		if cfg.Reports.Enabled {
			reports := api.Group("/reports/classes/:group")
			reports.GET("/progress", reportHandler.ClassOverview)
			reports.GET("/progress.csv", reportHandler.ExportCSV)
			reports.GET("/progress.pdf", reportHandler.ExportPDF)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func enqueueSweep(q *jobs.Queue, logr *zap.Logger) {
	err := q.Enqueue(jobs.Job{
		ID:       uuid.NewString(),
		Type:     service.SweepJobType,
		Enqueued: time.Now(),
	})
	if err != nil {
		logr.Warn("failed to enqueue due-date sweep", zap.Error(err))
	}
}
