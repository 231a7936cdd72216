// internal/domain/entity/boarding_pass.go
package entity

import (
	"time"

	"gatescan-service/pkg/bcbp"
)

// DecodedPass is a stored decode result, optionally linked to the scan
// event it came from. Created once per successful decode, never mutated.
type DecodedPass struct {
	ID           string            `bson:"_id,omitempty"`
	BarcodeValue string            `bson:"barcodeValue"`
	Pass         bcbp.BoardingPass `bson:"pass"`
	ScanEventID  string            `bson:"scanEventId,omitempty"`
	CreatedAt    time.Time         `bson:"createdAt"`
}
