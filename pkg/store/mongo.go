package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/copper/pkg/cache"
	"github.com/matzehuels/copper/pkg/drc"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "copper"
	DefaultCollection = "exclusions"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// exclusionDoc is the stored form: the exclusion plus its design.
type exclusionDoc struct {
	Design        string `bson:"design"`
	drc.Exclusion `bson:",inline"`
}

// MongoStore keeps exclusions in one collection, one document per
// (design, fingerprint).
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, verifies the connection (retrying transient
// failures) and ensures the unique (design, fingerprint) index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	err = cache.ConnectBackoff.Retry(ctx, func(ctx context.Context) error {
		err := client.Ping(ctx, nil)
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return cache.Retryable(err)
		}
		return err
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "design", Value: 1}, {Key: "fingerprint", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Load(ctx context.Context, design string) ([]drc.Exclusion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fingerprint", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"design": design}, opts)
	if err != nil {
		return nil, fmt.Errorf("find exclusions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []exclusionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode exclusions: %w", err)
	}
	out := make([]drc.Exclusion, len(docs))
	for i, d := range docs {
		out[i] = d.Exclusion
	}
	return out, nil
}

func (s *MongoStore) Save(ctx context.Context, design string, x drc.Exclusion) error {
	if err := validate(design, x); err != nil {
		return err
	}
	filter := bson.M{"design": design, "fingerprint": x.Fingerprint}
	_, err := s.coll.ReplaceOne(ctx, filter, exclusionDoc{Design: design, Exclusion: x}, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save exclusion: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, design, fingerprint string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"design": design, "fingerprint": fingerprint})
	if err != nil {
		return fmt.Errorf("delete exclusion: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("exclusion %s: %w", fingerprint, ErrNotFound)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
