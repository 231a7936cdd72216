// internal/domain/entity/scan_event.go
package entity

import (
	"time"
)

// AcceptStatus is the outcome of offering a scan event to the ledger.
type AcceptStatus string

const (
	// StatusAccepted means the event is now part of the ledger.
	StatusAccepted AcceptStatus = "accepted"
	// StatusDuplicate means an event with the same (barcodeValue, flightId)
	// key was already accepted. From the submitting device's point of view
	// this is a success: the scan is recorded, whoever recorded it first.
	StatusDuplicate AcceptStatus = "duplicate"
)

// ScanEvent is one boarding-pass scan reported by a gate device.
// Immutable once accepted; the ledger keeps it as historical record.
type ScanEvent struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	BarcodeValue  string    `bson:"barcodeValue" json:"barcodeValue"`
	BarcodeFormat string    `bson:"barcodeFormat" json:"barcodeFormat"`
	DeviceID      string    `bson:"deviceId" json:"deviceId"`
	FlightID      *int64    `bson:"flightId,omitempty" json:"flightId,omitempty"` // nil for unassigned scans
	ScanTime      time.Time `bson:"scanTime" json:"scanTime"`                     // client-asserted, preserved verbatim
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// DedupKey is the uniqueness key enforced by the ledger when a flight is
// assigned. Events without a flight are unconstrained.
func (e *ScanEvent) DedupKey() (barcode string, flightID int64, ok bool) {
	if e.FlightID == nil {
		return "", 0, false
	}
	return e.BarcodeValue, *e.FlightID, true
}
