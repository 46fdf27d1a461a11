package realtime

import (
	"context"
	"fmt"

	"github.com/anonto42/beawarely-feed/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoWatcher receives collection changes through a database change stream.
// Change streams need a replica set or sharded cluster.
type MongoWatcher struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoWatcher creates a MongoWatcher
func NewMongoWatcher(db *mongo.Database, logger *zap.Logger) *MongoWatcher {
	return &MongoWatcher{db: db, logger: logger}
}

type changeEvent struct {
	NS struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
}

// Listen watches the source collections and forwards their changes to out
func (w *MongoWatcher) Listen(ctx context.Context, out chan<- Change) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: models.SourceTables}}}}}},
	}
	stream, err := w.db.Watch(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}
	defer stream.Close(context.Background())
	w.logger.Info("watching feed collections", zap.Strings("collections", models.SourceTables))

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			w.logger.Warn("undecodable change event", zap.Error(err))
			continue
		}
		if !send(ctx, out, Change{Table: ev.NS.Coll}) {
			return nil
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change stream: %w", err)
	}
	return nil
}
