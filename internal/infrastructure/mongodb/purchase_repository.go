package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// PurchaseRepository reads historical purchase line items to resolve unit
// prices. The purchases collection is owned by the procurement side; this
// repository is strictly read-only.
type PurchaseRepository struct {
	collection *observedCollection
	currency   string
}

// NewPurchaseRepository creates a PurchaseRepository on the purchases
// collection
func NewPurchaseRepository(db *mongo.Database, currency string, m *metrics.Metrics) *PurchaseRepository {
	repo := &PurchaseRepository{collection: observeCollection(db, "purchases", m), currency: currency}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *PurchaseRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "items.name", Value: 1}, {Key: "purchasedAt", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindUnitPrice returns the unit price (cents) from the most recent
// purchase containing a line item with the given name. found is false when
// no purchase ever included the item.
func (r *PurchaseRepository) FindUnitPrice(ctx context.Context, itemName string) (domain.Money, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "purchasedAt", Value: -1}})

	var purchase struct {
		Items []struct {
			Name      string `bson:"name"`
			UnitPrice int64  `bson:"unitPrice"`
		} `bson:"items"`
	}
	err := r.collection.FindOne(ctx, bson.M{"items.name": itemName}, opts).Decode(&purchase)
	if err == mongo.ErrNoDocuments {
		return domain.ZeroMoney(r.currency), false, nil
	}
	if err != nil {
		return domain.ZeroMoney(r.currency), false, fmt.Errorf("failed to find purchase: %w", err)
	}

	for _, item := range purchase.Items {
		if item.Name == itemName {
			price, err := domain.NewMoney(item.UnitPrice, r.currency)
			if err != nil {
				return domain.ZeroMoney(r.currency), false, err
			}
			return price, true, nil
		}
	}
	return domain.ZeroMoney(r.currency), false, nil
}
