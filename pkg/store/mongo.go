package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrMongoNotReady indicates all MongoDB connection attempts failed
var ErrMongoNotReady = errors.New("store.mongo_not_ready")

// MongoConfig holds MongoDB connection settings for the Mongo-backed store.
type MongoConfig struct {
	ConnectionURL  string        `env:"USERSTACK_MONGODB_URL,required"`
	Database       string        `env:"USERSTACK_MONGODB_DATABASE" envDefault:"userstack"`
	Collection     string        `env:"USERSTACK_MONGODB_COLLECTION" envDefault:"sessions"`
	ConnectTimeout time.Duration `env:"USERSTACK_MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	RetryAttempts  int           `env:"USERSTACK_MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"USERSTACK_MONGODB_RETRY_INTERVAL" envDefault:"5s"`
}

// ConnectMongo establishes a MongoDB connection using the provided
// configuration, retrying up to RetryAttempts times.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	for i := 0; i < cfg.RetryAttempts; i++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrMongoNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrMongoNotReady
}

// mongoDocument is the persisted shape of one store entry.
type mongoDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

// MongoStore implements Store on a MongoDB collection, one document per
// key. Pair with a TTL index on expires_at (see EnsureIndexes) so the
// server evicts expired records; Load also checks expiry so a missing
// index only delays eviction, never correctness.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a Mongo-backed store over the given collection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{collection: db.Collection(collection)}
}

// EnsureIndexes creates the TTL index backing server-side expiry.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}

// Save writes the value under key with the given retention horizon.
func (s *MongoStore) Save(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	doc := mongoDocument{Key: key, Value: value}
	if ttl > 0 {
		doc.ExpiresAt = time.Now().Add(ttl)
	}

	_, err := s.collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Load returns the value stored under key, or ErrNotFound.
func (s *MongoStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// TTL index sweeps run on a coarse interval, so the document may
	// outlive its horizon server-side.
	if !doc.ExpiresAt.IsZero() && time.Now().After(doc.ExpiresAt) {
		_ = s.Remove(ctx, key)
		return nil, ErrNotFound
	}

	return doc.Value, nil
}

// Remove deletes the value stored under key.
func (s *MongoStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	_, err := s.collection.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}})
	return err
}
