package repository

import (
	"context"

	"gatescan-service/internal/domain/entity"
)

// ReferenceCodeRepository serves the airport/airline/cabin-class code
// tables devices cache for offline translation of decoded fields.
type ReferenceCodeRepository interface {
	Airports(ctx context.Context) ([]*entity.AirportCode, error)
	Airlines(ctx context.Context) ([]*entity.AirlineCode, error)
	CabinClasses(ctx context.Context) ([]*entity.CabinClassCode, error)
}
