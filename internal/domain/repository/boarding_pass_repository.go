package repository

import (
	"context"

	"gatescan-service/internal/domain/entity"
)

// BoardingPassRepository stores decode results for later lookup.
type BoardingPassRepository interface {
	Save(ctx context.Context, pass *entity.DecodedPass) error
	FindByBarcode(ctx context.Context, barcodeValue string) (*entity.DecodedPass, error)
}
