package repository

import (
	"context"
	"time"

	"gatescan-service/internal/domain/entity"
)

// FlightRepository is the read-only view of flight identity the scan
// pipeline consumes. Flight lifecycle is owned elsewhere.
type FlightRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Flight, error)
	FindActive(ctx context.Context) ([]*entity.Flight, error)
	// FindChangedSince returns flights created or modified at or after the
	// given server-side timestamp; a nil timestamp means a full pull.
	// Repeat calls with the same timestamp return the same set.
	FindChangedSince(ctx context.Context, since *time.Time) ([]*entity.Flight, error)
}
