// internal/domain/entity/rejection.go
package entity

import (
	"time"
)

// RejectionReason classifies why a barcode was turned away.
type RejectionReason string

const (
	ReasonDateMismatch  RejectionReason = "date_mismatch"
	ReasonInvalidFormat RejectionReason = "invalid_format"
	ReasonError         RejectionReason = "error"
)

// RejectionRecord is an append-only audit entry for a barcode that failed
// decode or validation. It is written on a side channel and never read by
// the ingestion path; operators use it to spot patterns such as a device
// scanning passengers for the wrong day.
type RejectionRecord struct {
	ID            string          `bson:"_id,omitempty" json:"id"`
	BarcodeValue  string          `bson:"barcodeValue" json:"barcodeValue"`
	BarcodeFormat string          `bson:"barcodeFormat" json:"barcodeFormat"`
	Reason        RejectionReason `bson:"reason" json:"reason"`
	ExpectedDate  string          `bson:"expectedDate,omitempty" json:"expectedDate,omitempty"`
	ActualDate    string          `bson:"actualDate,omitempty" json:"actualDate,omitempty"`
	FlightNumber  int             `bson:"flightNumber,omitempty" json:"flightNumber,omitempty"`
	Airline       string          `bson:"airline,omitempty" json:"airline,omitempty"`
	DeviceID      string          `bson:"deviceId" json:"deviceId"`
	RejectedAt    time.Time       `bson:"rejectedAt" json:"rejectedAt"`
}
