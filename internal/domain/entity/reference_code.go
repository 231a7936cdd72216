// internal/domain/entity/reference_code.go
package entity

// Reference code tables served to devices at startup so they can translate
// decoded fields while offline.

// AirportCode maps an IATA airport code to its display name.
type AirportCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

// AirlineCode maps an IATA airline designator to its display name.
type AirlineCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CabinClassCode maps a single-letter cabin class to its description.
type CabinClassCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
