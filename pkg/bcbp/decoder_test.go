package bcbp

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeSpaceDelimited(t *testing.T) {
	raw := "M1BAYU/MUHAMMAD MR ESMMTHQ DHXCGKID 6473 032Y007A0002 300"

	pass, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := BoardingPass{
		PassengerName:    "MUHAMMAD BAYU",
		ETicketIndicator: "E",
		BookingCode:      "SMMTHQ",
		Origin:           "DHX",
		Destination:      "CGK",
		AirlineCode:      "ID",
		FlightNumber:     6473,
		FlightDateJulian: "032",
		CabinClass:       "Y",
		SeatNumber:       "007A",
		SequenceNumber:   "0002",
		ConditionalData:  "300",
	}
	if *pass != want {
		t.Errorf("Decode mismatch:\n got %+v\nwant %+v", *pass, want)
	}
}

func TestDecodeAirlineDialects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		airline string
		julian  string
		flight  int
	}{
		{
			name:    "garuda with conditional data",
			raw:     "M1PRASETYO/YUDHA DWI  EE6UVIL CGKSUBGA 0312 260Y045C0120 348>5180  5259B1A              2A12621429493830 GA                        N",
			airline: "GA",
			julian:  "260",
			flight:  312,
		},
		{
			name:    "citilink z indicator",
			raw:     "M1LADOA/RICKYFEBRIANTO ZKMR9K SUBCGKQG 0725 168Y017A0016 147>1181WW5166BQG 000000000000029177000000000- 0",
			airline: "QG",
			julian:  "168",
			flight:  725,
		},
		{
			name:    "batik air compound lastname",
			raw:     "M1ABU TALIB/SUZANA MS EQQZBWR KULTWUOD 1900 129Y012F0118 100",
			airline: "OD",
			julian:  "129",
			flight:  1900,
		},
		{
			name:    "three letter airline code",
			raw:     "M1SMITH/JOHN EABC123 CGKJKTGIA 0001 001Y001A0001 100",
			airline: "GIA",
			julian:  "001",
			flight:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if pass.AirlineCode != tt.airline {
				t.Errorf("AirlineCode = %q, want %q", pass.AirlineCode, tt.airline)
			}
			if pass.FlightDateJulian != tt.julian {
				t.Errorf("FlightDateJulian = %q, want %q", pass.FlightDateJulian, tt.julian)
			}
			if pass.FlightNumber != tt.flight {
				t.Errorf("FlightNumber = %d, want %d", pass.FlightNumber, tt.flight)
			}
		})
	}
}

func TestDecodeStrictFixedWidth(t *testing.T) {
	// Mandatory items only, every field at its absolute position:
	// name [2:22], e-ticket [22], booking [23:29], route [29:37],
	// flight [37:42], julian [42:45], class [45], seat [46:50],
	// sequence [50:54], status [54], conditional afterwards.
	raw := "M1DESMARAIS/LUC       EABC123YULFRAAC0834 326J001A00251 00"

	pass, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if pass.PassengerName != "LUC DESMARAIS" {
		t.Errorf("PassengerName = %q, want %q", pass.PassengerName, "LUC DESMARAIS")
	}
	if pass.BookingCode != "ABC123" {
		t.Errorf("BookingCode = %q, want %q", pass.BookingCode, "ABC123")
	}
	if pass.Origin != "YUL" || pass.Destination != "FRA" {
		t.Errorf("route = %q-%q, want YUL-FRA", pass.Origin, pass.Destination)
	}
	if pass.AirlineCode != "AC" {
		t.Errorf("AirlineCode = %q, want %q", pass.AirlineCode, "AC")
	}
	if pass.FlightNumber != 834 {
		t.Errorf("FlightNumber = %d, want 834", pass.FlightNumber)
	}
	if pass.FlightDateJulian != "326" {
		t.Errorf("FlightDateJulian = %q, want %q", pass.FlightDateJulian, "326")
	}
	if pass.CabinClass != "J" {
		t.Errorf("CabinClass = %q, want %q", pass.CabinClass, "J")
	}
	if pass.SeatNumber != "001A" || pass.SequenceNumber != "0025" {
		t.Errorf("seat/seq = %q/%q, want 001A/0025", pass.SeatNumber, pass.SequenceNumber)
	}
}

func TestDecodeNameFormatting(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"title discarded", "M1PUTRI/SITI MS EXYZ789 CGKSUBJT 0610 277Y023B0045 300", "SITI PUTRI"},
		{"no title", "M1SMITH/JOHN EABC123 CGKJKTGA 0001 001Y001A0001 100", "JOHN SMITH"},
		{"compound lastname", "M1ABU TALIB/SUZANA MS EQQZBWR KULTWUOD 1900 129Y012F0118 100", "SUZANA ABU TALIB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if pass.PassengerName != tt.want {
				t.Errorf("PassengerName = %q, want %q", pass.PassengerName, tt.want)
			}
		})
	}
}

func TestDecodeInfantTicket(t *testing.T) {
	raw := "M1MAYZURA/AUFARIZA EBJQUJW CGKUPGID 6296 147Y0INF0097 100"

	pass, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !pass.InfantStatus {
		t.Error("InfantStatus = false, want true for INF seat marker")
	}
	if pass.SeatNumber != "" {
		t.Errorf("SeatNumber = %q, want empty for lap infant", pass.SeatNumber)
	}
	if pass.SequenceNumber != "0097" {
		t.Errorf("SequenceNumber = %q, want %q", pass.SequenceNumber, "0097")
	}
}

func TestDecodeJulianBoundaries(t *testing.T) {
	build := func(julian string) string {
		return "M1SMITH/JOHN EABC123 CGKJKTGA 0001 " + julian + "Y001A0001 100"
	}

	for _, valid := range []string{"001", "366"} {
		t.Run("valid "+valid, func(t *testing.T) {
			pass, err := Decode(build(valid))
			if err != nil {
				t.Fatalf("Decode failed for julian %s: %v", valid, err)
			}
			if pass.FlightDateJulian != valid {
				t.Errorf("FlightDateJulian = %q, want %q", pass.FlightDateJulian, valid)
			}
		})
	}

	for _, invalid := range []string{"000", "367"} {
		t.Run("invalid "+invalid, func(t *testing.T) {
			_, err := Decode(build(invalid))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(julian %s) error = %v, want ErrMalformed", invalid, err)
			}
		})
	}
}

func TestDecodeMalformedInputs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"too short", "M1SMITH/JOHN"},
		{"wrong format code", "X1SMITH/JOHN EABC123 CGKJKTGA 0001 001Y001A0001 100"},
		{"non numeric flight number", "M1SMITH/JOHN EABC123 CGKJKTGA 00A1 001Y001A0001 100"},
		{"missing route token", "M1SMITH/JOHN EABC123 0001 001Y001A0001 100 extra pad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestDecodeIsRepeatable(t *testing.T) {
	raw := "M1BAYU/MUHAMMAD MR ESMMTHQ DHXCGKID 6473 032Y007A0002 300"

	first, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Decode(raw)
		if err != nil {
			t.Fatalf("repeat Decode failed: %v", err)
		}
		if *again != *first {
			t.Fatalf("Decode not repeatable: %+v vs %+v", *again, *first)
		}
	}
}

func TestNormalize(t *testing.T) {
	raw := "M1SMITH/JOHN\r\n EABC123\tCGKJKTGA 0001 001Y001A0001 100"
	got := Normalize(raw)
	if strings.ContainsAny(got, "\r\n\t") {
		t.Errorf("Normalize left control characters in %q", got)
	}
	if !strings.Contains(got, "M1SMITH/JOHN EABC123") {
		t.Errorf("Normalize dropped payload content: %q", got)
	}
}
