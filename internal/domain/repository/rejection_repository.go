package repository

import (
	"context"
	"time"

	"gatescan-service/internal/domain/entity"
)

// RejectionRecorder is the fire-and-forget audit sink for barcodes that
// failed decode or validation. Record never returns an error and never
// blocks the ingestion path; a lost audit entry is acceptable, a blocked
// scan is not.
type RejectionRecorder interface {
	Record(ctx context.Context, rec *entity.RejectionRecord)
}

// RejectionQuery filters the operator-facing rejection log listing.
type RejectionQuery struct {
	Airline  string
	Reason   entity.RejectionReason
	DeviceID string
	Since    *time.Time
	Limit    int64
	Offset   int64
}

// RejectionReader is the read surface consumed by operators; it is never
// used by the ingestion path.
type RejectionReader interface {
	Find(ctx context.Context, q RejectionQuery) ([]*entity.RejectionRecord, error)
}
