package repository

import (
	"context"
	"errors"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBoardingPassRepository implements BoardingPassRepository
type MongoBoardingPassRepository struct {
	collection *mongo.Collection
}

// NewMongoBoardingPassRepository creates a new decoded pass repository
func NewMongoBoardingPassRepository(db *mongo.Database) repository.BoardingPassRepository {
	collection := db.Collection("decoded_passes")

	ctx := context.Background()
	barcodeIndex := mongo.IndexModel{
		Keys: bson.M{"barcodeValue": 1},
	}
	collection.Indexes().CreateOne(ctx, barcodeIndex)

	return &MongoBoardingPassRepository{
		collection: collection,
	}
}

// Save stores a decode result
func (r *MongoBoardingPassRepository) Save(ctx context.Context, pass *entity.DecodedPass) error {
	if pass.ID == "" {
		pass.ID = primitive.NewObjectID().Hex()
	}
	pass.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, pass)
	return err
}

// FindByBarcode returns the most recent decode result for a barcode, or nil
func (r *MongoBoardingPassRepository) FindByBarcode(ctx context.Context, barcodeValue string) (*entity.DecodedPass, error) {
	var pass entity.DecodedPass
	err := r.collection.FindOne(ctx, bson.M{"barcodeValue": barcodeValue}).Decode(&pass)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &pass, nil
}
