package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nirmaan-app/procurement/internal/config"
	"github.com/nirmaan-app/procurement/internal/middleware"
	"github.com/nirmaan-app/procurement/internal/procurement/entity"
	"github.com/nirmaan-app/procurement/internal/procurement/handler"
	"github.com/nirmaan-app/procurement/internal/procurement/repository"
	"github.com/nirmaan-app/procurement/internal/procurement/service"
	"github.com/nirmaan-app/procurement/internal/procurement/session"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting procurement service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.SentBackBatch{},
		&entity.SentBackItem{},
		&entity.PurchaseOrder{},
		&entity.PurchaseOrderItem{},
		&entity.Vendor{},
		&entity.ApprovedQuote{},
		&entity.Comment{},
		&entity.ReviewLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	var sessions session.Store
	if cfg.Redis.Enabled {
		sessions = session.NewRedisStore(initRedis(cfg.Redis))
		zapLogger.Info("Selection sessions backed by Redis",
			zap.String("host", cfg.Redis.Host))
	} else {
		sessions = session.NewMemoryStore()
		zapLogger.Warn("Redis disabled, selection sessions held in memory")
	}

	var objectStore *minio.Client
	if cfg.MinIO.Enabled {
		objectStore, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Fatal("Failed to init object storage", zap.Error(err))
		}
	} else {
		zapLogger.Warn("MinIO disabled, order export unavailable")
	}

	repos := repository.NewRepositories(db)
	reviewSvc := service.NewReviewService(repos, sessions)
	orderSvc := service.NewOrderService(repos.PO, repos.ReviewLog)
	exportSvc := service.NewExportService(repos.PO, repos.ReviewLog, objectStore, cfg.MinIO.Bucket)
	handlers := handler.NewHandlers(reviewSvc, orderSvc, exportSvc, repos.Vendor)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1/procurement", middleware.JWTAuth(cfg.JWT.Secret))
	{
		batches := v1.Group("/sent-back-batches")
		{
			batches.GET("", h.Batch.ListBatches)
			batches.POST("", h.Batch.CreateBatch)
			batches.GET("/:id", h.Batch.GetBatch)
			batches.GET("/:id/comments", h.Batch.GetComments)
			batches.GET("/:id/review-log", h.Batch.GetReviewLog)

			batches.GET("/:id/selection", h.Batch.GetSelection)
			batches.PUT("/:id/selection/category", h.Batch.SelectCategory)
			batches.PUT("/:id/selection/items", h.Batch.SelectItems)
			batches.DELETE("/:id/selection", h.Batch.ClearSelection)

			batches.POST("/:id/approve", h.Batch.Approve)
			batches.POST("/:id/send-back", h.Batch.SendBack)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", h.Order.ListOrders)
			orders.GET("/:id", h.Order.GetOrder)
			orders.PUT("/:id/status", h.Order.UpdateStatus)
			orders.POST("/:id/export", h.Order.Export)
		}

		vendors := v1.Group("/vendors")
		{
			vendors.GET("", h.Vendor.ListVendors)
			vendors.GET("/:id", h.Vendor.GetVendor)
		}
	}
}
