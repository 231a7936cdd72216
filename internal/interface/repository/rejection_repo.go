package repository

import (
	"context"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"
	"gatescan-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const rejectionWriteTimeout = 5 * time.Second

// MongoRejectionRepository implements RejectionRecorder and RejectionReader
// on an append-only collection. Writes happen off the request path; a
// failed audit write is logged and dropped, never surfaced to the scanner.
type MongoRejectionRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

// NewMongoRejectionRepository creates a new rejection log repository
func NewMongoRejectionRepository(db *mongo.Database, log logger.Logger) *MongoRejectionRepository {
	collection := db.Collection("rejection_logs")

	ctx := context.Background()

	// Indexes for the operator-facing filters.
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"rejectedAt": -1}},
		{Keys: bson.M{"airline": 1}},
		{Keys: bson.M{"deviceId": 1}},
	})

	return &MongoRejectionRepository{
		collection: collection,
		log:        log,
	}
}

var (
	_ repository.RejectionRecorder = (*MongoRejectionRepository)(nil)
	_ repository.RejectionReader   = (*MongoRejectionRepository)(nil)
)

// Record appends an audit entry on a side channel. It returns immediately;
// the insert runs on its own deadline detached from the request context so
// an aborted request still leaves a trace.
func (r *MongoRejectionRepository) Record(_ context.Context, rec *entity.RejectionRecord) {
	if rec.ID == "" {
		rec.ID = primitive.NewObjectID().Hex()
	}
	if rec.RejectedAt.IsZero() {
		rec.RejectedAt = time.Now()
	}

	entry := *rec
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), rejectionWriteTimeout)
		defer cancel()

		if _, err := r.collection.InsertOne(ctx, &entry); err != nil {
			r.log.Error("Failed to write rejection log",
				"error", err,
				"barcode", entry.BarcodeValue,
				"reason", entry.Reason)
		}
	}()
}

// Find returns rejection entries matching the query, newest first
func (r *MongoRejectionRepository) Find(ctx context.Context, q repository.RejectionQuery) ([]*entity.RejectionRecord, error) {
	filter := bson.M{}
	if q.Airline != "" {
		filter["airline"] = q.Airline
	}
	if q.Reason != "" {
		filter["reason"] = q.Reason
	}
	if q.DeviceID != "" {
		filter["deviceId"] = q.DeviceID
	}
	if q.Since != nil {
		filter["rejectedAt"] = bson.M{"$gte": *q.Since}
	}

	opts := options.Find().SetSort(bson.D{{Key: "rejectedAt", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	if q.Offset > 0 {
		opts.SetSkip(q.Offset)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*entity.RejectionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
