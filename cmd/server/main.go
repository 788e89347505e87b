package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/internal/app/controller"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/ikkim/catalog-backend/internal/cache"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/ikkim/catalog-backend/internal/router"
	"github.com/ikkim/catalog-backend/internal/scheduler"
	"github.com/ikkim/catalog-backend/internal/storage"
	"github.com/ikkim/catalog-backend/pkg/logger"
	pkgredis "github.com/ikkim/catalog-backend/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting catalog service", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it category lists are not cached and
	// product views are not counted.
	var redisClient *goredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.Connect(&cfg.Redis)
		if err != nil {
			logger.Warn("Continuing without Redis", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redisClient.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher = events.NoopPublisher{}
	rabbit, err := events.Dial(cfg.RabbitMQ)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, events will not be published", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		publisher = rabbit
		defer rabbit.Close()
	}

	var uploader service.ImageUploader
	if cfg.S3.Bucket != "" {
		uploader = storage.NewS3Storage(cfg.S3)
	} else {
		logger.Warn("AWS_S3_BUCKET not set, image file uploads are disabled")
	}

	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	filterRepo := repository.NewFilterRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	categoryService := service.NewCategoryService(categoryRepo, cache.NewCategoryCache(redisClient, cfg.Cache.CategoryTTL), publisher)
	filterService := service.NewFilterService(filterRepo, categoryRepo, productRepo, publisher)
	productService := service.NewProductService(productRepo, uploader, publisher)
	productViewService := service.NewProductViewService(productRepo, cache.NewViewCounter(redisClient))

	if rabbit != nil {
		consumer := events.NewStockConsumer(rabbit.Connection(), cfg.RabbitMQ.StockUpdatedQueue, productService)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("Stock update consumer stopped", err)
			}
		}()
	}

	var viewSync *scheduler.ViewSyncScheduler
	if redisClient != nil {
		viewSync = scheduler.NewViewSyncScheduler(productViewService, cfg.Scheduler.ViewSyncSpec)
		if err := viewSync.Start(); err != nil {
			logger.Warn("View sync scheduler disabled", map[string]interface{}{
				"error": err.Error(),
			})
			viewSync = nil
		}
	}

	r := router.NewRouter(
		controller.NewCategoryController(categoryService),
		controller.NewFilterController(filterService),
		controller.NewProductController(productService),
		controller.NewProductViewController(productViewService),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shut down", err)
	}

	if viewSync != nil {
		viewSync.Stop()
		if _, err := productViewService.SyncViewCounts(shutdownCtx); err != nil {
			logger.Error("Final view sync failed", err)
		}
	}

	logger.Info("Server stopped successfully")
}
