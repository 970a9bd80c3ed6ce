package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// StockRepository is the MongoDB-backed ledger. All quantity mutations go
// through conditional atomic updates so the non-negativity invariant holds
// regardless of concurrency.
type StockRepository struct {
	collection *observedCollection
}

// NewStockRepository creates a StockRepository on the stocks collection
func NewStockRepository(db *mongo.Database, m *metrics.Metrics) *StockRepository {
	repo := &StockRepository{collection: observeCollection(db, "stocks", m)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *StockRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "item.name", Value: 1},
				{Key: "item.unit", Value: 1},
				{Key: "item.category", Value: 1},
				{Key: "siteId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "siteId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByID returns the stock line by its hex ID, or nil when absent
func (r *StockRepository) FindByID(ctx context.Context, id string) (*domain.StockItem, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var stock domain.StockItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}
	return &stock, nil
}

// FindByIdentity returns the line for (item, holder), or nil when absent
func (r *StockRepository) FindByIdentity(ctx context.Context, item domain.ItemIdentity, siteID string) (*domain.StockItem, error) {
	var stock domain.StockItem
	err := r.collection.FindOne(ctx, identityFilter(item, siteID)).Decode(&stock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}
	return &stock, nil
}

// FindAll lists stock lines sorted by item name. A non-empty siteID scopes
// the listing to that site; the empty string lists every holder including
// the company pool.
func (r *StockRepository) FindAll(ctx context.Context, siteID string, limit, offset int) ([]*domain.StockItem, error) {
	filter := bson.M{}
	if siteID != "" {
		filter["siteId"] = siteID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "item.name", Value: 1}, {Key: "siteId", Value: 1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	defer cursor.Close(ctx)

	var stocks []*domain.StockItem
	if err := cursor.All(ctx, &stocks); err != nil {
		return nil, fmt.Errorf("failed to decode stocks: %w", err)
	}
	return stocks, nil
}

// Credit atomically increments the line for (item, holder), creating it
// first when absent. The upsert makes find-or-create a single operation, so
// concurrent credits against a missing line cannot both insert.
func (r *StockRepository) Credit(ctx context.Context, item domain.ItemIdentity, siteID string, quantity int) (*domain.StockItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	update := bson.M{
		"$inc": bson.M{"quantity": quantity},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"item":      item,
			"siteId":    siteID,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stock domain.StockItem
	err := r.collection.FindOneAndUpdate(ctx, identityFilter(item, siteID), update, opts).Decode(&stock)
	if err != nil {
		return nil, fmt.Errorf("failed to credit stock: %w", err)
	}
	return &stock, nil
}

// DebitIfSufficient atomically decrements the line for (item, holder) only
// when its quantity covers the amount. The quantity guard sits in the
// filter, so a line that is absent or short simply does not match and the
// ledger is untouched.
func (r *StockRepository) DebitIfSufficient(ctx context.Context, item domain.ItemIdentity, siteID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	filter := identityFilter(item, siteID)
	filter["quantity"] = bson.M{"$gte": quantity}

	update := bson.M{
		"$inc": bson.M{"quantity": -quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to debit stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func identityFilter(item domain.ItemIdentity, siteID string) bson.M {
	return bson.M{
		"item.name":     item.Name,
		"item.unit":     item.Unit,
		"item.category": item.Category,
		"siteId":        siteID,
	}
}
