package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stwalsh4118/procur/internal/models"
)

const snapshotsCollection = "report_snapshots"

// MaxSnapshotResults caps how many snapshots Recent returns.
const MaxSnapshotResults = 100

// SnapshotRepository archives report snapshots.
type SnapshotRepository interface {
	// Save stores a snapshot.
	Save(ctx context.Context, snapshot models.ReportSnapshot) error

	// Recent returns up to limit snapshots, newest first. An empty collection
	// name matches every collection.
	Recent(ctx context.Context, collection string, limit int) ([]models.ReportSnapshot, error)
}

type snapshotRepository struct {
	coll *mongo.Collection
}

// ConnectMongo opens and verifies a MongoDB client.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// NewSnapshotRepository stores snapshots in db.
func NewSnapshotRepository(db *mongo.Database) SnapshotRepository {
	return &snapshotRepository{coll: db.Collection(snapshotsCollection)}
}

func (r *snapshotRepository) Save(ctx context.Context, snapshot models.ReportSnapshot) error {
	if _, err := r.coll.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert %s snapshot: %w", snapshot.Collection, err)
	}
	return nil
}

func (r *snapshotRepository) Recent(ctx context.Context, collection string, limit int) ([]models.ReportSnapshot, error) {
	if limit <= 0 || limit > MaxSnapshotResults {
		limit = MaxSnapshotResults
	}

	filter := bson.M{}
	if collection != "" {
		filter["collection"] = collection
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "taken_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	results := make([]models.ReportSnapshot, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return results, nil
}
