package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/complaint-desk-api/api/swagger"
	"github.com/noah-isme/complaint-desk-api/internal/handler"
	"github.com/noah-isme/complaint-desk-api/internal/repository"
	"github.com/noah-isme/complaint-desk-api/internal/router"
	"github.com/noah-isme/complaint-desk-api/internal/service"
	"github.com/noah-isme/complaint-desk-api/pkg/cache"
	"github.com/noah-isme/complaint-desk-api/pkg/config"
	"github.com/noah-isme/complaint-desk-api/pkg/database"
	"github.com/noah-isme/complaint-desk-api/pkg/jobs"
	"github.com/noah-isme/complaint-desk-api/pkg/logger"
	"github.com/noah-isme/complaint-desk-api/pkg/storage"
)

// @title Complaint Desk API
// @version 1.0.0
// @description Complaint submission, triage, messaging and reporting backend
// @BasePath /api
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Stats.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "complaint-desk:")

	contentStore, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare attachment storage", zap.Error(err))
	}
	stagingStore, err := storage.NewLocalStorage(cfg.Attachments.StagingDir)
	if err != nil {
		logr.Fatal("failed to prepare attachment staging", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && redisClient != nil)
	attachmentSvc := service.NewAttachmentService(stagingStore, contentStore, signer, complaintRepo, auditRepo, metricsSvc, logr, service.AttachmentConfig{
		MaxFileSize:  cfg.Attachments.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Attachments.AllowedMIMEs,
		OrphanTTL:    cfg.Attachments.OrphanTTL,
		DownloadPath: cfg.APIPrefix + "/attachments",
	})
	complaintSvc := service.NewComplaintService(complaintRepo, userRepo, attachmentSvc, cacheSvc, auditRepo, metricsSvc, validate, logr, service.ComplaintConfig{
		EscalationThreshold: cfg.Escalation.Threshold,
		StatsTTL:            cfg.Stats.CacheTTL,
	})
	messageSvc := service.NewMessageService(messageRepo, complaintRepo, userRepo, auditRepo, validate, logr)
	reportSvc := service.NewReportService(complaintRepo, metricsSvc, validate, logr)

	if cfg.Seed.Officers {
		if _, err := service.NewSeedService(userRepo, logr).SeedOfficers(ctx, cfg.Seed.OfficerPassword); err != nil {
			logr.Warn("officer seeding failed", zap.Error(err))
		}
	}

	sweeper := jobs.NewPeriodic("attachment-sweep", func(ctx context.Context) error {
		_, err := attachmentSvc.Sweep(ctx)
		return err
	}, jobs.PeriodicConfig{Interval: cfg.Attachments.SweepInterval, RunImmediately: true, Logger: logr})
	sweeper.Start(ctx)
	defer sweeper.Stop()

	engine := router.New(router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Users:       handler.NewUserHandler(userSvc),
		Complaints:  handler.NewComplaintHandler(complaintSvc, attachmentSvc),
		Admin:       handler.NewAdminHandler(complaintSvc),
		Officer:     handler.NewOfficerHandler(complaintSvc),
		Messages:    handler.NewMessageHandler(messageSvc),
		Reports:     handler.NewReportHandler(reportSvc, logr),
		Attachments: handler.NewAttachmentHandler(attachmentSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, db),
	}, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Docs.Enabled,
		EnableMetrics:  cfg.Metrics.Enabled,
		Tokens:         authSvc,
		Audit:          auditRepo,
		MetricsService: metricsSvc,
		Logger:         logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
