package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// UsageRepository persists immutable consumption records
type UsageRepository struct {
	collection *observedCollection
}

// NewUsageRepository creates a UsageRepository on the stock_usages collection
func NewUsageRepository(db *mongo.Database, m *metrics.Metrics) *UsageRepository {
	repo := &UsageRepository{collection: observeCollection(db, "stock_usages", m)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *UsageRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "siteId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "stockId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a usage record and assigns its ID
func (r *UsageRepository) Insert(ctx context.Context, usage *domain.UsageRecord) error {
	if usage.ID.IsZero() {
		usage.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, usage); err != nil {
		return fmt.Errorf("failed to insert usage: %w", err)
	}
	return nil
}

// FindAll lists usage records newest first, optionally scoped to one site
func (r *UsageRepository) FindAll(ctx context.Context, siteID string, limit, offset int) ([]*domain.UsageRecord, error) {
	filter := bson.M{}
	if siteID != "" {
		filter["siteId"] = siteID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list usages: %w", err)
	}
	defer cursor.Close(ctx)

	var usages []*domain.UsageRecord
	if err := cursor.All(ctx, &usages); err != nil {
		return nil, fmt.Errorf("failed to decode usages: %w", err)
	}
	return usages, nil
}
