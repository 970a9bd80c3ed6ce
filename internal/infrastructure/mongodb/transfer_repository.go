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

// TransferRepository persists transfer requests in the stock_transfers
// collection. Decided transfers are never deleted or re-decided.
type TransferRepository struct {
	collection *observedCollection
}

// NewTransferRepository creates a TransferRepository
func NewTransferRepository(db *mongo.Database, m *metrics.Metrics) *TransferRepository {
	repo := &TransferRepository{collection: observeCollection(db, "stock_transfers", m)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *TransferRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "stockId", Value: 1}}},
		{Keys: bson.D{{Key: "requestedBy", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Insert stores a new transfer request and assigns its ID
func (r *TransferRepository) Insert(ctx context.Context, transfer *domain.TransferRequest) error {
	if transfer.ID.IsZero() {
		transfer.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, transfer); err != nil {
		return fmt.Errorf("failed to insert transfer: %w", err)
	}
	return nil
}

// FindByID returns the transfer by its hex ID, or nil when absent
func (r *TransferRepository) FindByID(ctx context.Context, id string) (*domain.TransferRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var transfer domain.TransferRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&transfer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer: %w", err)
	}
	return &transfer, nil
}

// FindAll lists transfers newest first, optionally filtered by status
func (r *TransferRepository) FindAll(ctx context.Context, status domain.TransferStatus, limit, offset int) ([]*domain.TransferRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer cursor.Close(ctx)

	var transfers []*domain.TransferRequest
	if err := cursor.All(ctx, &transfers); err != nil {
		return nil, fmt.Errorf("failed to decode transfers: %w", err)
	}
	return transfers, nil
}

// MarkDecided flips a transfer out of the requested state. The filter pins
// the current status, so a transfer that was already decided does not match
// and the terminal state stays as it was.
func (r *TransferRepository) MarkDecided(ctx context.Context, id string, status domain.TransferStatus, actor string, decidedAt time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTransferNotFound
	}

	filter := bson.M{
		"_id":    objectID,
		"status": domain.TransferRequested,
	}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"decidedBy": actor,
			"decidedAt": decidedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decide transfer: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrInvalidTransferState
	}
	return nil
}
