package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulkdelete/internal/bulkdelete/util"
	"bulkdelete/internal/sandbox/config"
	"bulkdelete/internal/sandbox/handler"
	"bulkdelete/internal/sandbox/model"
	"bulkdelete/internal/sandbox/repository"
	"bulkdelete/internal/sandbox/router"
	"bulkdelete/internal/sandbox/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// 0. Init Logger
	util.InitLogger(os.Getenv("SANDBOX_LOG_LEVEL"), "json")
	logger := util.GetLogger()

	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Init storage: MongoDB when configured, memory otherwise
	var (
		repo   repository.ResourceRepository
		client *mongo.Client
	)
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		cancel()
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		repo = repository.NewMongoRepository(client.Database(cfg.DBName), cfg.ResourcesCollection)
		logger.Info("Using MongoDB resource store", "db", cfg.DBName, "collection", cfg.ResourcesCollection)
	} else {
		repo = repository.NewMemoryRepository()
		logger.Info("Using in-memory resource store")
	}

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("Failed to ensure indexes", "error", err)
	}

	// 3. Init Layers
	svc := service.NewService(repo, logger)
	h := handler.NewResourceHandler(svc)

	if len(cfg.SeedIDs) > 0 || len(cfg.LockedIDs) > 0 {
		req := model.SeedResourcesReq{IDs: cfg.SeedIDs, LockedIDs: cfg.LockedIDs}
		if err := req.Validate(); err != nil {
			logger.Error("Invalid seed ids", "error", err)
			os.Exit(1)
		}
		if _, err := svc.SeedResources(context.Background(), req); err != nil {
			logger.Error("Failed to seed resources", "error", err)
			os.Exit(1)
		}
	}

	// 4. Init Echo & Routes
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))

	router.RegisterRoutes(e, h, router.AuthConfig{APIKey: cfg.APIKey, BearerToken: cfg.BearerToken})

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("Starting sandbox", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("shutting down the sandbox", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down sandbox...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Sandbox Shutdown Failed", "error", err)
	}

	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect DB", "error", err)
		}
	}

	logger.Info("Sandbox exited properly")
}
