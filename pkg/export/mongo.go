package export

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/redcanaryco/vscode-attack/pkg/errors"
)

// MongoSink upserts documents into a MongoDB database.
type MongoSink struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoSink connects to uri and verifies the connection.
func NewMongoSink(ctx context.Context, uri, database string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoSink{client: client, db: client.Database(database)}, nil
}

// Upsert replaces each document by id, inserting missing ones.
func (s *MongoSink) Upsert(ctx context.Context, collection string, docs []Document) (int64, error) {
	models := make([]mongo.WriteModel, len(docs))
	for i, d := range docs {
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true)
	}

	res, err := s.db.Collection(collection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "write %s", collection)
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Sink = (*MongoSink)(nil)
