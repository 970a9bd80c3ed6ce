package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/buildsite-platform/stock-service/internal/domain"
	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// NotificationRepository stores in-app notifications. Writes here are
// always best-effort from the caller's point of view.
type NotificationRepository struct {
	collection *observedCollection
}

// NewNotificationRepository creates a NotificationRepository
func NewNotificationRepository(db *mongo.Database, m *metrics.Metrics) *NotificationRepository {
	repo := &NotificationRepository{collection: observeCollection(db, "notifications", m)}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *NotificationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "relatedId", Value: 1}, {Key: "type", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Create stores one notification
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if _, err := r.collection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// UpdateStatusByRelatedID moves every notification tied to a related record
// into the given status
func (r *NotificationRepository) UpdateStatusByRelatedID(ctx context.Context, relatedID, notificationType, status string) error {
	filter := bson.M{"relatedId": relatedID, "type": notificationType}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update notifications: %w", err)
	}
	return nil
}
