// internal/domain/entity/flight.go
package entity

import (
	"time"
)

// Flight is the read-only flight identity the scan pipeline consumes.
// Lifecycle (create/update/retire) belongs to the flight-management
// service; this core only checks existence and active state.
type Flight struct {
	ID            int64      `json:"id"`
	FlightNumber  string     `json:"flightNumber"`
	Airline       string     `json:"airline"`
	Destination   string     `json:"destination"`
	Gate          string     `json:"gate"`
	DepartureTime time.Time  `json:"departureTime"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}
