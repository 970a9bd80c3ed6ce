package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/buildsite-platform/stock-service/pkg/metrics"
)

// observedCollection wraps a collection handle and times every operation
// into the MongoDB metric family. A nil Metrics disables recording, which
// the migrate CLI and tests rely on.
type observedCollection struct {
	coll    *mongo.Collection
	metrics *metrics.Metrics
}

func observeCollection(db *mongo.Database, name string, m *metrics.Metrics) *observedCollection {
	return &observedCollection{coll: db.Collection(name), metrics: m}
}

func (c *observedCollection) record(operation string, start time.Time, success bool) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordMongoDBOperation(c.coll.Name(), operation, success, time.Since(start))
}

// FindOne delegates to the collection. A missing document counts as a
// successful operation; only driver failures count against the metric.
func (c *observedCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	start := time.Now()
	result := c.coll.FindOne(ctx, filter, opts...)
	err := result.Err()
	c.record("findOne", start, err == nil || err == mongo.ErrNoDocuments)
	return result
}

func (c *observedCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	start := time.Now()
	cursor, err := c.coll.Find(ctx, filter, opts...)
	c.record("find", start, err == nil)
	return cursor, err
}

func (c *observedCollection) InsertOne(ctx context.Context, document interface{}) (*mongo.InsertOneResult, error) {
	start := time.Now()
	result, err := c.coll.InsertOne(ctx, document)
	c.record("insertOne", start, err == nil)
	return result, err
}

func (c *observedCollection) UpdateOne(ctx context.Context, filter, update interface{}) (*mongo.UpdateResult, error) {
	start := time.Now()
	result, err := c.coll.UpdateOne(ctx, filter, update)
	c.record("updateOne", start, err == nil)
	return result, err
}

func (c *observedCollection) UpdateMany(ctx context.Context, filter, update interface{}) (*mongo.UpdateResult, error) {
	start := time.Now()
	result, err := c.coll.UpdateMany(ctx, filter, update)
	c.record("updateMany", start, err == nil)
	return result, err
}

func (c *observedCollection) FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	start := time.Now()
	result := c.coll.FindOneAndUpdate(ctx, filter, update, opts...)
	err := result.Err()
	c.record("findOneAndUpdate", start, err == nil || err == mongo.ErrNoDocuments)
	return result
}

func (c *observedCollection) Indexes() mongo.IndexView {
	return c.coll.Indexes()
}
