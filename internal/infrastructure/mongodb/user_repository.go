package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// UserRepository reads the shared users collection for notification
// routing. User management lives elsewhere; only the admin listing is
// needed here.
type UserRepository struct {
	collection *observedCollection
}

// NewUserRepository creates a UserRepository on the users collection
func NewUserRepository(db *mongo.Database, m *metrics.Metrics) *UserRepository {
	return &UserRepository{collection: observeCollection(db, "users", m)}
}

// ListAdmins returns the IDs of every admin user
func (r *UserRepository) ListAdmins(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"role": "admin"}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer cursor.Close(ctx)

	var users []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}

	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID.Hex())
	}
	return ids, nil
}
