package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/laytoneval/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink replaces each record's document, keyed by document id
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongo connects to uri and verifies the server is reachable
func NewMongo(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if database == "" || collection == "" {
		return nil, fmt.Errorf("mongo: database and collection are required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Write upserts rec
func (s *MongoSink) Write(ctx context.Context, rec *model.PuzzleRecord) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": rec.DocumentID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert %s: %w", rec.DocumentID, err)
	}
	return nil
}

// Close disconnects the client
func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
