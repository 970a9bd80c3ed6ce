package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/buildsite-platform/stock-service/internal/application"
	mongoRepo "github.com/buildsite-platform/stock-service/internal/infrastructure/mongodb"
	"github.com/buildsite-platform/stock-service/pkg/kafka"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
	"github.com/buildsite-platform/stock-service/pkg/middleware"
	"github.com/buildsite-platform/stock-service/pkg/mongodb"
)

const serviceName = "stock-service"

func main() {
	logger := logging.New(logging.DefaultConfig(serviceName))
	logger.SetDefault()

	logger.Info("Starting stock-service API")

	config := loadConfig()
	ctx := context.Background()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Repositories
	db := mongoClient.Database()
	stockRepo := mongoRepo.NewStockRepository(db, m)
	transferRepo := mongoRepo.NewTransferRepository(db, m)
	usageRepo := mongoRepo.NewUsageRepository(db, m)
	siteRepo := mongoRepo.NewSiteRepository(db, m)
	purchaseRepo := mongoRepo.NewPurchaseRepository(db, application.DefaultCurrency, m)
	userRepo := mongoRepo.NewUserRepository(db, m)
	notificationRepo := mongoRepo.NewNotificationRepository(db, m)

	// Application services
	valuator := application.NewValuator(purchaseRepo, m, logger)
	fanout := application.NewNotificationFanout(userRepo, notificationRepo, m, logger)
	stockService := application.NewStockApplicationService(stockRepo, siteRepo, producer, m, logger)
	transferService := application.NewTransferApplicationService(
		stockRepo, transferRepo, siteRepo, mongoClient, valuator, fanout, producer, m, logger)
	usageService := application.NewUsageApplicationService(
		stockRepo, usageRepo, siteRepo, mongoClient, producer, m, logger)

	// Router
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1/stocks")
	{
		api.POST("", addStockHandler(stockService, logger))
		api.GET("", listStocksHandler(stockService, logger))

		api.POST("/transfers", requestTransferHandler(transferService, logger))
		api.GET("/transfers", listTransfersHandler(transferService, logger))
		api.PATCH("/transfers/:id/approve", approveTransferHandler(transferService, logger))
		api.PATCH("/transfers/:id/reject", rejectTransferHandler(transferService, logger))

		api.POST("/usages", recordUsageHandler(usageService, logger))
		api.GET("/usages", listUsagesHandler(usageService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaConfig.ClientID = serviceName

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8010"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "backoffice"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},
		Kafka: kafkaConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
