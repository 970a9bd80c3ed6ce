package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/buildsite-platform/stock-service/internal/application"
	mongoRepo "github.com/buildsite-platform/stock-service/internal/infrastructure/mongodb"
	"github.com/buildsite-platform/stock-service/pkg/logging"
	"github.com/buildsite-platform/stock-service/pkg/mongodb"
)

// migrate prepares the database: creates the collections and indexes the
// service relies on and reports basic counts. Safe to run repeatedly.
func main() {
	var (
		uri      = flag.String("uri", getEnv("MONGODB_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
		database = flag.String("database", getEnv("MONGODB_DATABASE", "backoffice"), "Database name")
		dryRun   = flag.Bool("dry-run", false, "Report counts without creating indexes")
	)
	flag.Parse()

	logger := logging.New(logging.DefaultConfig("stock-service-migrate"))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            *uri,
		Database:       *database,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer client.Close(ctx)

	db := client.Database()

	if !*dryRun {
		// Repository constructors create their indexes; no metrics here
		mongoRepo.NewStockRepository(db, nil)
		mongoRepo.NewTransferRepository(db, nil)
		mongoRepo.NewUsageRepository(db, nil)
		mongoRepo.NewPurchaseRepository(db, application.DefaultCurrency, nil)
		mongoRepo.NewNotificationRepository(db, nil)
		logger.Info("Indexes ensured", "database", *database)
	}

	for _, name := range []string{"stocks", "stock_transfers", "stock_usages", "sites", "purchases", "users", "notifications"} {
		count, err := db.Collection(name).CountDocuments(ctx, bson.M{})
		if err != nil {
			logger.WithError(err).Error("Failed to count documents", "collection", name)
			continue
		}
		fmt.Printf("%-18s %d documents\n", name, count)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
