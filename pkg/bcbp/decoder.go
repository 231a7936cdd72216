// Package bcbp decodes the bar-coded boarding-pass text payload printed
// into PDF417/QR boarding passes. Two layouts are supported: the
// space-delimited dialect used by several regional airlines and the strict
// fixed-width IATA layout used by most international carriers.
package bcbp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is returned when the payload cannot be decoded: too short,
// wrong leg prefix, or a required fixed-width field holding characters
// outside its expected class.
var ErrMalformed = errors.New("malformed barcode")

// BoardingPass is the structured result of a successful decode.
// It is derived once from a raw payload and never mutated.
type BoardingPass struct {
	PassengerName    string `json:"passengerName" bson:"passengerName"`
	ETicketIndicator string `json:"eTicketIndicator" bson:"eTicketIndicator"`
	BookingCode      string `json:"bookingCode" bson:"bookingCode"`
	Origin           string `json:"origin" bson:"origin"`
	Destination      string `json:"destination" bson:"destination"`
	AirlineCode      string `json:"airlineCode" bson:"airlineCode"`
	FlightNumber     int    `json:"flightNumber" bson:"flightNumber"`
	FlightDateJulian string `json:"flightDateJulian" bson:"flightDateJulian"`
	CabinClass       string `json:"cabinClass" bson:"cabinClass"`
	SeatNumber       string `json:"seatNumber" bson:"seatNumber"`
	SequenceNumber   string `json:"sequenceNumber" bson:"sequenceNumber"`
	InfantStatus     bool   `json:"infantStatus" bson:"infantStatus"`
	ConditionalData  string `json:"conditionalData,omitempty" bson:"conditionalData,omitempty"`
}

const (
	// minPayloadLen is the shortest payload either strategy can carry:
	// leg prefix, a short name, booking, route, flight and date block.
	minPayloadLen = 30
	// strictPayloadLen is the mandatory-item length of the fixed-width layout.
	strictPayloadLen = 55

	infantSeatMarker = "INF"
)

// routeTokenRe matches the origin+destination+airline token of the
// space-delimited layout, e.g. "DHXCGKID" or "KULLGKAK".
var routeTokenRe = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2,3}$`)

var nameTitles = map[string]bool{
	"MR": true, "MS": true, "MRS": true, "MISS": true, "DR": true, "PROF": true,
}

var eTicketIndicators = map[byte]bool{'E': true, 'M': true, 'Z': true, 'T': true, 'B': true}

// Normalize strips control characters from a raw scan while keeping the
// internal spaces the space-delimited layout depends on.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c > 127 {
			continue
		}
		if c == ' ' || !isControl(c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func isControl(c rune) bool {
	return c < 0x20 || c == 0x7f
}

// Decode parses a boarding-pass payload into a BoardingPass. It is pure:
// the same input always yields the same result or the same error.
func Decode(raw string) (*BoardingPass, error) {
	payload := Normalize(raw)

	if len(payload) < minPayloadLen {
		return nil, fmt.Errorf("%w: payload length %d below minimum %d", ErrMalformed, len(payload), minPayloadLen)
	}
	if payload[0] != 'M' {
		return nil, fmt.Errorf("%w: missing format code %q", ErrMalformed, "M")
	}

	if pass, err := decodeSpaceDelimited(payload); err == nil {
		return pass, nil
	}

	return decodeStrict(payload)
}

// decodeSpaceDelimited handles the dialect where the mandatory items are
// separated by spaces. The route token (origin+destination+airline) anchors
// the field layout; everything before the booking token is the name segment.
func decodeSpaceDelimited(payload string) (*BoardingPass, error) {
	tokens := strings.Fields(payload)

	routeIdx := -1
	for i := 2; i < len(tokens); i++ {
		if routeTokenRe.MatchString(tokens[i]) {
			routeIdx = i
			break
		}
	}
	if routeIdx < 2 || routeIdx+2 >= len(tokens) {
		return nil, fmt.Errorf("%w: route token not found", ErrMalformed)
	}

	eTicket, booking, nameEnd := splitBookingToken(tokens, routeIdx)

	nameSegment := strings.Join(tokens[:nameEnd], " ")
	if len(nameSegment) < 3 {
		return nil, fmt.Errorf("%w: empty passenger name segment", ErrMalformed)
	}
	// Drop the "M<legs>" prefix from the first name token.
	nameSegment = strings.TrimSpace(nameSegment[2:])

	route := tokens[routeIdx]
	flightNumber, err := parseFlightNumber(tokens[routeIdx+1])
	if err != nil {
		return nil, err
	}

	dateBlock := tokens[routeIdx+2]
	julian, cabin, seat, sequence, err := parseDateBlock(dateBlock)
	if err != nil {
		return nil, err
	}

	infant := strings.Contains(seat, infantSeatMarker)
	if infant {
		// Lap infants travel without a seat assignment.
		seat = ""
	}

	conditional := ""
	if routeIdx+3 < len(tokens) {
		conditional = strings.Join(tokens[routeIdx+3:], " ")
	}

	return &BoardingPass{
		PassengerName:    formatPassengerName(nameSegment),
		ETicketIndicator: eTicket,
		BookingCode:      booking,
		Origin:           route[0:3],
		Destination:      route[3:6],
		AirlineCode:      route[6:],
		FlightNumber:     flightNumber,
		FlightDateJulian: julian,
		CabinClass:       cabin,
		SeatNumber:       seat,
		SequenceNumber:   sequence,
		InfantStatus:     infant,
		ConditionalData:  conditional,
	}, nil
}

// splitBookingToken separates the e-ticket indicator from the booking code.
// Some passes pad the name field so far that the indicator becomes its own
// single-character token; in that case it is merged with the next token.
func splitBookingToken(tokens []string, routeIdx int) (eTicket, booking string, nameEnd int) {
	tok := tokens[routeIdx-1]
	if routeIdx >= 3 && len(tokens[routeIdx-2]) == 1 && eTicketIndicators[tokens[routeIdx-2][0]] {
		return tokens[routeIdx-2], tok, routeIdx - 2
	}
	return tok[:1], tok[1:], routeIdx - 1
}

// decodeStrict handles the fixed-width IATA layout where every mandatory
// item sits at a known character position. Positions are absolute: the name
// field is trimmed only after extraction.
func decodeStrict(payload string) (*BoardingPass, error) {
	if len(payload) < strictPayloadLen {
		return nil, fmt.Errorf("%w: payload length %d below fixed-width minimum %d", ErrMalformed, len(payload), strictPayloadLen)
	}

	name := strings.TrimSpace(payload[2:22])
	eTicket := payload[22:23]
	booking := strings.TrimSpace(payload[23:29])
	origin := payload[29:32]
	destination := payload[32:35]
	airline := strings.TrimSpace(payload[35:37])

	for _, code := range []string{origin, destination} {
		if !isUpperAlpha(code) {
			return nil, fmt.Errorf("%w: airport code %q is not three letters", ErrMalformed, code)
		}
	}

	flightNumber, err := parseFlightNumber(strings.TrimSpace(payload[37:42]))
	if err != nil {
		return nil, err
	}

	julian, err := parseJulianDay(payload[42:45])
	if err != nil {
		return nil, err
	}

	cabin := payload[45:46]
	seat := strings.TrimSpace(payload[46:50])
	sequence := strings.TrimSpace(payload[50:54])

	infant := strings.Contains(seat, infantSeatMarker)
	if infant {
		seat = ""
	}

	conditional := ""
	if len(payload) > strictPayloadLen {
		conditional = strings.TrimSpace(payload[strictPayloadLen:])
	}

	return &BoardingPass{
		PassengerName:    formatPassengerName(name),
		ETicketIndicator: eTicket,
		BookingCode:      booking,
		Origin:           origin,
		Destination:      destination,
		AirlineCode:      airline,
		FlightNumber:     flightNumber,
		FlightDateJulian: julian,
		CabinClass:       cabin,
		SeatNumber:       seat,
		SequenceNumber:   sequence,
		InfantStatus:     infant,
		ConditionalData:  conditional,
	}, nil
}

// parseDateBlock splits the "<julian:3><class:1><seat:4><seq:4>" item of
// the space-delimited layout. Seat and sequence are optional trailing
// fields; julian and class are mandatory.
func parseDateBlock(block string) (julian, cabin, seat, sequence string, err error) {
	if len(block) < 4 {
		return "", "", "", "", fmt.Errorf("%w: date block %q too short", ErrMalformed, block)
	}
	julian, err = parseJulianDay(block[0:3])
	if err != nil {
		return "", "", "", "", err
	}
	cabin = block[3:4]
	if len(block) >= 8 {
		seat = strings.TrimSpace(block[4:8])
	}
	if len(block) >= 12 {
		sequence = strings.TrimSpace(block[8:12])
	}
	return julian, cabin, seat, sequence, nil
}

// parseJulianDay validates the 3-digit day-of-year field. The year is not
// encoded in the barcode; resolving the day to a calendar date is the
// caller's concern.
func parseJulianDay(s string) (string, error) {
	if len(s) != 3 || !isDigits(s) {
		return "", fmt.Errorf("%w: julian day %q is not three digits", ErrMalformed, s)
	}
	day, _ := strconv.Atoi(s)
	if day < 1 || day > 366 {
		return "", fmt.Errorf("%w: julian day %q outside 001-366", ErrMalformed, s)
	}
	return s, nil
}

func parseFlightNumber(s string) (int, error) {
	if s == "" || !isDigits(s) {
		return 0, fmt.Errorf("%w: flight number %q is not numeric", ErrMalformed, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: flight number %q: %v", ErrMalformed, s, err)
	}
	return n, nil
}

// formatPassengerName renders the "LAST/FIRST TITLE" segment as
// "FIRST LAST". The honorific title, when present, is discarded.
func formatPassengerName(segment string) string {
	parts := strings.SplitN(segment, "/", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(segment)
	}

	last := strings.TrimSpace(parts[0])
	first := strings.TrimSpace(parts[1])

	words := strings.Fields(first)
	if len(words) > 1 && nameTitles[strings.ToUpper(words[len(words)-1])] {
		first = strings.Join(words[:len(words)-1], " ")
	}

	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}
