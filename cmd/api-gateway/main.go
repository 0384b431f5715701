package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-adp-scheduler/api/swagger"
	"github.com/noah-isme/sma-adp-scheduler/internal/handler"
	"github.com/noah-isme/sma-adp-scheduler/internal/middleware"
	"github.com/noah-isme/sma-adp-scheduler/internal/models"
	"github.com/noah-isme/sma-adp-scheduler/internal/repository"
	"github.com/noah-isme/sma-adp-scheduler/internal/service"
	"github.com/noah-isme/sma-adp-scheduler/pkg/cache"
	"github.com/noah-isme/sma-adp-scheduler/pkg/config"
	"github.com/noah-isme/sma-adp-scheduler/pkg/lock"
	"github.com/noah-isme/sma-adp-scheduler/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-scheduler/pkg/middleware/requestid"
)

// @title SMA ADP Teacher Assignment Scheduler
// @version 1.0.0
// @description Administrative API binding teachers to weekly class slots without double-booking.
// @BasePath /
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	st, closeStore, err := openStores(ctx, cfg, metricsSvc, logr)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		locker    lock.Locker = lock.NewKeyedMutex()
		cacheRepo service.CacheRepository
	)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()

		cacheRepo = repository.NewCacheRepository(client, logr)
		if cfg.Lock.Backend == config.LockBackendRedis {
			locker = lock.Chain{locker, lock.NewRedisLocker(client, lock.RedisLockerOptions{
				Prefix:        "scheduler:lock:",
				TTL:           cfg.Lock.TTL,
				RetryInterval: cfg.Lock.RetryInterval,
			})}
		}
	} else if cfg.Lock.Backend == config.LockBackendRedis {
		logr.Warn("redis lock backend requested without redis; falling back to in-process locks")
	}

	idempotency := service.NewCacheService(cacheRepo, metricsSvc, cfg.Idempotency.TTL, logr, cfg.Idempotency.Enabled)
	assignmentSvc := service.NewTeacherAssignmentService(
		st.assignments,
		st.teachers,
		st.classes,
		locker,
		idempotency,
		metricsSvc,
		service.AssignmentServiceConfig{
			OperationTimeout: cfg.Scheduler.OperationTimeout,
			DefaultPageSize:  cfg.Scheduler.DefaultPageSize,
			MaxPageSize:      cfg.Scheduler.MaxPageSize,
			IdempotencyTTL:   cfg.Idempotency.TTL,
		},
		validator.New(),
		logr,
	)
	legacySvc := service.NewLegacyAssignmentService(assignmentSvc)
	statisticsSvc := service.NewStatisticsService(st.assignments, cfg.Scheduler.OperationTimeout, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, st.assignments)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := r.Group(cfg.APIPrefix+"/admin",
		middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
	)
	handler.NewAssignmentHandler(assignmentSvc, statisticsSvc).RegisterRoutes(admin)
	handler.NewLegacyTeacherHandler(legacySvc).RegisterRoutes(admin)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store_backend", cfg.Store.Backend),
			zap.String("lock_backend", cfg.Lock.Backend),
			zap.Bool("idempotency", idempotency.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
