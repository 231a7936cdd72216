package repository

import (
	"context"

	"gatescan-service/internal/domain/entity"
)

// ScanLedger is the authoritative store of accepted scan events. It
// enforces the one-scan-per-barcode-per-flight invariant: TryAccept is a
// single atomic check-and-insert, so under concurrent submissions of the
// same (barcodeValue, flightId) key exactly one caller wins and the rest
// observe StatusDuplicate. Events without a flight are always accepted.
//
// There are no update or delete operations; an accepted event is
// immutable history. A non-nil error means storage failure, never a
// duplicate.
type ScanLedger interface {
	TryAccept(ctx context.Context, event *entity.ScanEvent) (entity.AcceptStatus, error)
	FindByFlight(ctx context.Context, flightID int64) ([]*entity.ScanEvent, error)
}
