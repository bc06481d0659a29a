package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCollection is the collection entries are stored in.
const mongoCollection = "cache"

// MongoCache stores entries as documents. A TTL index on expires_at lets the
// server purge expired entries; Get also checks expiry because the purge runs
// only once a minute.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoEntry is the stored document.
type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects to uri, verifies the connection and ensures the TTL
// index exists in database.
func NewMongoCache(ctx context.Context, uri, database string) (Cache, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	err = ping(ctx, "mongo", func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ttl index: %w", err)
	}
	return &MongoCache{client: client, coll: coll}, nil
}

// Get retrieves a value from MongoDB.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set upserts a value in MongoDB.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		entry.ExpiresAt = &exp
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	return err
}

// Delete removes a value from MongoDB.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Clear deletes every document of the cache collection.
func (c *MongoCache) Clear(ctx context.Context) (int, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	return c.client.Disconnect(context.Background())
}

var (
	_ Cache   = (*MongoCache)(nil)
	_ Clearer = (*MongoCache)(nil)
)
