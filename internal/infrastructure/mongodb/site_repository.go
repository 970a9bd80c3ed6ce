package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// SiteRepository gives the ledger its write access to construction site
// finances: appending transactions and adjusting the running expense total.
// Site lifecycle belongs to another service; this repository never creates
// or deletes sites.
type SiteRepository struct {
	collection *observedCollection
}

// NewSiteRepository creates a SiteRepository on the sites collection
func NewSiteRepository(db *mongo.Database, m *metrics.Metrics) *SiteRepository {
	return &SiteRepository{collection: observeCollection(db, "sites", m)}
}

// AppendTransaction pushes one entry onto the site's transaction log
func (r *SiteRepository) AppendTransaction(ctx context.Context, siteID string, txn domain.SiteTransaction) error {
	objectID, err := primitive.ObjectIDFromHex(siteID)
	if err != nil {
		return domain.ErrMissingSite
	}

	update := bson.M{"$push": bson.M{"transactions": txn}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to append site transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrMissingSite
	}
	return nil
}

// AdjustExpenses adds delta (cents, may be negative) to the site's running
// expense total
func (r *SiteRepository) AdjustExpenses(ctx context.Context, siteID string, delta int64) error {
	objectID, err := primitive.ObjectIDFromHex(siteID)
	if err != nil {
		return domain.ErrMissingSite
	}

	update := bson.M{"$inc": bson.M{"totalExpenses": delta}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to adjust site expenses: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrMissingSite
	}
	return nil
}

// GetNames resolves site IDs to display names. Unknown IDs are simply
// absent from the result.
func (r *SiteRepository) GetNames(ctx context.Context, siteIDs []string) (map[string]string, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(siteIDs))
	for _, id := range siteIDs {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}
	if len(objectIDs) == 0 {
		return map[string]string{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find sites: %w", err)
	}
	defer cursor.Close(ctx)

	var sites []struct {
		ID   primitive.ObjectID `bson:"_id"`
		Name string             `bson:"name"`
	}
	if err := cursor.All(ctx, &sites); err != nil {
		return nil, fmt.Errorf("failed to decode sites: %w", err)
	}

	names := make(map[string]string, len(sites))
	for _, site := range sites {
		names[site.ID.Hex()] = site.Name
	}
	return names, nil
}
