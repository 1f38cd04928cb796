// Package mongo loads hot-swap source records from a MongoDB collection.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/source"
)

// Compile-time check: Loader implements source.Loader.
var _ source.Loader = (*Loader)(nil)

const (
	primaryKey       = "_id"
	defaultBatchSize = 1000
)

// Config holds connection parameters.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// cursor is the subset of *mongo.Cursor the loader reads through.
type cursor interface {
	Next(ctx context.Context) bool
	Decode(v any) error
	Err() error
	Close(ctx context.Context) error
}

type finder interface {
	Find(ctx context.Context, collection string) (cursor, error)
}

// Loader reads full collections into partitioned datasets.
type Loader struct {
	find       finder
	disconnect func(ctx context.Context) error
	logger     *zap.Logger
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Loader, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongo uri and database are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	l := newLoader(&collectionFinder{db: client.Database(cfg.Database)}, logger)
	l.disconnect = client.Disconnect
	return l, nil
}

func newLoader(f finder, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{find: f, logger: logger}
}

// Close disconnects the client.
func (l *Loader) Close(ctx context.Context) error {
	if l.disconnect == nil {
		return nil
	}
	return l.disconnect(ctx)
}

// Load streams the whole collection. Each document's id comes from
// req.IDField (default _id); ObjectIDs become their hex form. Documents with
// no id are still returned so the writer can count them as failed.
func (l *Loader) Load(ctx context.Context, req source.LoadRequest) (source.Dataset, error) {
	cur, err := l.find.Find(ctx, req.Collection)
	if err != nil {
		return source.Dataset{}, fmt.Errorf("find %s: %w", req.Collection, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	idField := req.IDField
	if idField == "" {
		idField = primaryKey
	}

	var recs []source.Record
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return source.Dataset{}, fmt.Errorf("decode %s document: %w", req.Collection, err)
		}
		recs = append(recs, toRecord(doc, idField))
	}
	if err := cur.Err(); err != nil {
		return source.Dataset{}, fmt.Errorf("iterate %s: %w", req.Collection, err)
	}

	l.logger.Info("Loaded source collection",
		zap.String("collection", req.Collection),
		zap.Int("records", len(recs)),
	)
	return source.FromRecords(recs, req.Partitions), nil
}

// toRecord copies doc, moving the chosen id into source.IDField. _id is
// dropped because the engine rejects it inside a document body.
func toRecord(doc bson.M, idField string) source.Record {
	rec := make(source.Record, len(doc))
	for k, v := range doc {
		if k == primaryKey {
			continue
		}
		if oid, ok := v.(primitive.ObjectID); ok {
			v = oid.Hex()
		}
		rec[k] = v
	}

	id := doc[idField]
	if oid, ok := id.(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	if id != nil {
		rec[source.IDField] = id
	}
	return rec
}

type collectionFinder struct {
	db *mongo.Database
}

func (f *collectionFinder) Find(ctx context.Context, collection string) (cursor, error) {
	opts := options.Find().SetBatchSize(defaultBatchSize)
	cur, err := f.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return cur, nil
}
