package repository

import (
	"context"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScanLedger implements ScanLedger on a MongoDB collection. The
// one-scan-per-barcode-per-flight invariant is enforced by a partial
// unique index, so the check-and-insert is a single storage-level
// operation: concurrent writers never need an application lock, the
// loser of a race simply gets a duplicate-key error.
type MongoScanLedger struct {
	collection *mongo.Collection
}

// NewMongoScanLedger creates the ledger repository and its indexes.
func NewMongoScanLedger(db *mongo.Database) repository.ScanLedger {
	collection := db.Collection("scan_events")

	ctx := context.Background()

	// Unique on (barcodeValue, flightId), but only for events that carry a
	// flight. Unassigned scans are unconstrained.
	dedupIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "barcodeValue", Value: 1},
			{Key: "flightId", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"flightId": bson.M{"$exists": true}}),
	}

	// Index on flightId for per-flight listings.
	flightIndex := mongo.IndexModel{
		Keys: bson.M{"flightId": 1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{dedupIndex, flightIndex})

	return &MongoScanLedger{
		collection: collection,
	}
}

// TryAccept inserts the event, or reports StatusDuplicate when an event
// with the same (barcodeValue, flightId) key already exists. A duplicate
// is not an error; only storage failures return one.
func (r *MongoScanLedger) TryAccept(ctx context.Context, event *entity.ScanEvent) (entity.AcceptStatus, error) {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	event.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		if event.FlightID != nil && mongo.IsDuplicateKeyError(err) {
			return entity.StatusDuplicate, nil
		}
		return "", err
	}
	return entity.StatusAccepted, nil
}

// FindByFlight returns the accepted events for a flight, oldest first.
func (r *MongoScanLedger) FindByFlight(ctx context.Context, flightID int64) ([]*entity.ScanEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"flightId": flightID}, &options.FindOptions{
		Sort: bson.D{{Key: "scanTime", Value: 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*entity.ScanEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
