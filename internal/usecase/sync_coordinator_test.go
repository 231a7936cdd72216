package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gatescan-service/internal/domain/entity"
	implrepo "gatescan-service/internal/interface/repository"
	"gatescan-service/pkg/bcbp"
	"gatescan-service/pkg/logger"
	"gatescan-service/pkg/metrics"
)

// Prometheus collectors register globally, so the whole package shares one
// metrics instance.
var testMetrics = metrics.NewMetrics("gatescan_usecase_test")

// Day 32 of the year, matching the Julian day in the sample barcodes below.
var day32 = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

const (
	sampleBarcode       = "M1BAYU/MUHAMMAD MR ESMMTHQ DHXCGKID 6473 032Y007A0002 300"
	sampleBarcodeSecond = "M1BAYU/MUHAMMAD MR ESMMTHQ DHXCGKID 6473 032Y008A0003 300"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Fatal(msg string, keysAndValues ...interface{}) {}
func (l nopLogger) With(keysAndValues ...interface{}) logger.Logger {
	return l
}

type stubFlightRepo struct {
	flights map[int64]*entity.Flight
	err     error
}

func (r *stubFlightRepo) GetByID(_ context.Context, id int64) (*entity.Flight, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.flights[id], nil
}

func (r *stubFlightRepo) FindActive(_ context.Context) ([]*entity.Flight, error) {
	var flights []*entity.Flight
	for _, f := range r.flights {
		if f.IsActive {
			flights = append(flights, f)
		}
	}
	return flights, nil
}

func (r *stubFlightRepo) FindChangedSince(_ context.Context, since *time.Time) ([]*entity.Flight, error) {
	var flights []*entity.Flight
	for _, f := range r.flights {
		if since == nil {
			flights = append(flights, f)
			continue
		}
		changed := f.CreatedAt
		if f.UpdatedAt != nil && f.UpdatedAt.After(changed) {
			changed = *f.UpdatedAt
		}
		if !changed.Before(*since) {
			flights = append(flights, f)
		}
	}
	return flights, nil
}

type stubPassRepo struct {
	mu    sync.Mutex
	saved []*entity.DecodedPass
}

func (r *stubPassRepo) Save(_ context.Context, pass *entity.DecodedPass) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, pass)
	return nil
}

func (r *stubPassRepo) FindByBarcode(_ context.Context, barcodeValue string) (*entity.DecodedPass, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.saved {
		if p.BarcodeValue == barcodeValue {
			return p, nil
		}
	}
	return nil, nil
}

type stubRejections struct {
	mu      sync.Mutex
	records []*entity.RejectionRecord
}

func (r *stubRejections) Record(_ context.Context, rec *entity.RejectionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

type fixture struct {
	coordinator *SyncCoordinator
	ledger      *implrepo.MemoryScanLedger
	flights     *stubFlightRepo
	passes      *stubPassRepo
	rejections  *stubRejections
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		ledger: implrepo.NewMemoryScanLedger(),
		flights: &stubFlightRepo{flights: map[int64]*entity.Flight{
			7: {ID: 7, FlightNumber: "ID6473", Airline: "ID", IsActive: true, CreatedAt: now.Add(-24 * time.Hour)},
		}},
		passes:     &stubPassRepo{},
		rejections: &stubRejections{},
	}
	f.coordinator = NewSyncCoordinator(
		f.ledger, f.flights, f.passes, f.rejections,
		testMetrics, nopLogger{}, time.UTC,
	)
	f.coordinator.now = func() time.Time { return now }
	return f
}

func flightRef(id int64) *int64 {
	return &id
}

func TestIngestScan(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts then deduplicates the same key", func(t *testing.T) {
		f := newFixture(day32)
		input := ScanInput{BarcodeValue: sampleBarcode, DeviceID: "gate-a", FlightID: flightRef(7)}

		first, err := f.coordinator.IngestScan(ctx, input)
		if err != nil {
			t.Fatalf("first ingest: %v", err)
		}
		if first.Status != entity.StatusAccepted {
			t.Fatalf("first status = %q, want accepted", first.Status)
		}

		second, err := f.coordinator.IngestScan(ctx, ScanInput{
			BarcodeValue: sampleBarcode, DeviceID: "gate-b", FlightID: flightRef(7),
		})
		if err != nil {
			t.Fatalf("second ingest: %v", err)
		}
		if second.Status != entity.StatusDuplicate {
			t.Fatalf("second status = %q, want duplicate", second.Status)
		}
		if f.ledger.Len() != 1 {
			t.Fatalf("ledger has %d events, want 1", f.ledger.Len())
		}
	})

	t.Run("scans without a flight are never deduplicated", func(t *testing.T) {
		f := newFixture(day32)
		for i := 0; i < 2; i++ {
			outcome, err := f.coordinator.IngestScan(ctx, ScanInput{BarcodeValue: sampleBarcode, DeviceID: "gate-a"})
			if err != nil {
				t.Fatalf("ingest %d: %v", i, err)
			}
			if outcome.Status != entity.StatusAccepted {
				t.Fatalf("ingest %d status = %q, want accepted", i, outcome.Status)
			}
		}
	})

	t.Run("rejects empty barcode", func(t *testing.T) {
		f := newFixture(day32)
		_, err := f.coordinator.IngestScan(ctx, ScanInput{DeviceID: "gate-a"})
		if !errors.Is(err, ErrEmptyBarcode) {
			t.Fatalf("err = %v, want ErrEmptyBarcode", err)
		}
	})

	t.Run("rejects unknown flight", func(t *testing.T) {
		f := newFixture(day32)
		_, err := f.coordinator.IngestScan(ctx, ScanInput{BarcodeValue: sampleBarcode, FlightID: flightRef(999)})
		if !errors.Is(err, ErrFlightUnknown) {
			t.Fatalf("err = %v, want ErrFlightUnknown", err)
		}
		if f.ledger.Len() != 0 {
			t.Fatalf("ledger has %d events, want 0", f.ledger.Len())
		}
	})

	t.Run("surfaces storage errors", func(t *testing.T) {
		f := newFixture(day32)
		f.flights.err = errors.New("connection refused")
		_, err := f.coordinator.IngestScan(ctx, ScanInput{BarcodeValue: sampleBarcode, FlightID: flightRef(7)})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestPushBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("one malformed item never blocks the rest", func(t *testing.T) {
		f := newFixture(day32)

		items := make([]ScanInput, 0, 10)
		for i := 0; i < 9; i++ {
			items = append(items, ScanInput{
				BarcodeValue: fmt.Sprintf("M1BAYU/MUHAMMAD MR ESMMTHQ DHXCGKID 6473 032Y00%dA000%d 300", i, i),
				DeviceID:     "gate-a",
				FlightID:     flightRef(7),
			})
		}
		malformed := ScanInput{BarcodeValue: "GARBAGE", DeviceID: "gate-a", FlightID: flightRef(7)}
		items = append(items[:4], append([]ScanInput{malformed}, items[4:]...)...)

		outcomes := f.coordinator.PushBatch(ctx, items, true)
		if len(outcomes) != 10 {
			t.Fatalf("got %d outcomes, want 10", len(outcomes))
		}

		accepted, rejected := 0, 0
		for _, o := range outcomes {
			switch o.Status {
			case batchStatusAccepted:
				accepted++
			case batchStatusRejected:
				rejected++
				if o.Reason != entity.ReasonInvalidFormat {
					t.Fatalf("rejected reason = %q, want invalid_format", o.Reason)
				}
			default:
				t.Fatalf("unexpected status %q", o.Status)
			}
		}
		if accepted != 9 || rejected != 1 {
			t.Fatalf("accepted=%d rejected=%d, want 9/1", accepted, rejected)
		}
		if f.ledger.Len() != 9 {
			t.Fatalf("ledger has %d events, want 9", f.ledger.Len())
		}
		if len(f.rejections.records) != 1 {
			t.Fatalf("got %d rejection records, want 1", len(f.rejections.records))
		}
	})

	t.Run("whole-batch retry is idempotent", func(t *testing.T) {
		f := newFixture(day32)
		items := []ScanInput{
			{BarcodeValue: sampleBarcode, DeviceID: "gate-a", FlightID: flightRef(7)},
			{BarcodeValue: sampleBarcodeSecond, DeviceID: "gate-a", FlightID: flightRef(7)},
		}

		first := f.coordinator.PushBatch(ctx, items, false)
		for _, o := range first {
			if o.Status != batchStatusAccepted {
				t.Fatalf("first attempt status = %q, want accepted", o.Status)
			}
		}

		second := f.coordinator.PushBatch(ctx, items, false)
		for _, o := range second {
			if o.Status != batchStatusDuplicate {
				t.Fatalf("retry status = %q, want duplicate", o.Status)
			}
		}
		if f.ledger.Len() != 2 {
			t.Fatalf("ledger has %d events, want 2", f.ledger.Len())
		}
	})

	t.Run("date mismatch rejects but returns the decoded pass", func(t *testing.T) {
		f := newFixture(day32.AddDate(0, 0, 1)) // day 33, barcode says 032

		outcomes := f.coordinator.PushBatch(ctx, []ScanInput{
			{BarcodeValue: sampleBarcode, DeviceID: "gate-a", FlightID: flightRef(7)},
		}, true)

		o := outcomes[0]
		if o.Status != batchStatusRejected || o.Reason != entity.ReasonDateMismatch {
			t.Fatalf("outcome = %q/%q, want rejected/date_mismatch", o.Status, o.Reason)
		}
		if o.Pass == nil || o.Pass.FlightNumber != 6473 {
			t.Fatalf("expected decoded pass in outcome, got %+v", o.Pass)
		}
		if f.ledger.Len() != 0 {
			t.Fatalf("ledger has %d events, want 0", f.ledger.Len())
		}

		if len(f.rejections.records) != 1 {
			t.Fatalf("got %d rejection records, want 1", len(f.rejections.records))
		}
		rec := f.rejections.records[0]
		if rec.ExpectedDate != "033" || rec.ActualDate != "032" {
			t.Fatalf("record dates = %q/%q, want 033/032", rec.ExpectedDate, rec.ActualDate)
		}
		if rec.Airline != "ID" || rec.FlightNumber != 6473 {
			t.Fatalf("record flight context = %q/%d", rec.Airline, rec.FlightNumber)
		}
	})

	t.Run("decode on ingest stores the pass for accepted scans", func(t *testing.T) {
		f := newFixture(day32)

		outcomes := f.coordinator.PushBatch(ctx, []ScanInput{
			{BarcodeValue: sampleBarcode, DeviceID: "gate-a", FlightID: flightRef(7)},
		}, true)

		if outcomes[0].Status != batchStatusAccepted {
			t.Fatalf("status = %q, want accepted", outcomes[0].Status)
		}
		stored, _ := f.passes.FindByBarcode(ctx, sampleBarcode)
		if stored == nil {
			t.Fatal("decoded pass was not stored")
		}
		if stored.Pass.BookingCode != "SMMTHQ" {
			t.Fatalf("stored booking code = %q, want SMMTHQ", stored.Pass.BookingCode)
		}
		if stored.ScanEventID == "" {
			t.Fatal("stored pass is not linked to its scan event")
		}
	})

	t.Run("unknown flight reports error without aborting", func(t *testing.T) {
		f := newFixture(day32)

		outcomes := f.coordinator.PushBatch(ctx, []ScanInput{
			{BarcodeValue: sampleBarcode, DeviceID: "gate-a", FlightID: flightRef(999)},
			{BarcodeValue: sampleBarcodeSecond, DeviceID: "gate-a", FlightID: flightRef(7)},
		}, false)

		if outcomes[0].Status != batchStatusError {
			t.Fatalf("first status = %q, want error", outcomes[0].Status)
		}
		if outcomes[1].Status != batchStatusAccepted {
			t.Fatalf("second status = %q, want accepted", outcomes[1].Status)
		}
	})
}

func TestDecodeBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("stores successful decodes", func(t *testing.T) {
		f := newFixture(day32)
		pass, err := f.coordinator.DecodeBarcode(ctx, sampleBarcode, "")
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if pass.PassengerName != "MUHAMMAD BAYU" {
			t.Fatalf("passenger = %q", pass.PassengerName)
		}
		stored, _ := f.passes.FindByBarcode(ctx, sampleBarcode)
		if stored == nil {
			t.Fatal("decode result was not stored")
		}
	})

	t.Run("audits failures", func(t *testing.T) {
		f := newFixture(day32)
		_, err := f.coordinator.DecodeBarcode(ctx, "not a boarding pass", "")
		if !errors.Is(err, bcbp.ErrMalformed) {
			t.Fatalf("err = %v, want ErrMalformed", err)
		}
		if len(f.rejections.records) != 1 {
			t.Fatalf("got %d rejection records, want 1", len(f.rejections.records))
		}
		if f.rejections.records[0].Reason != entity.ReasonInvalidFormat {
			t.Fatalf("reason = %q, want invalid_format", f.rejections.records[0].Reason)
		}
	})
}

func TestPullFlights(t *testing.T) {
	ctx := context.Background()
	f := newFixture(day32)

	updated := day32.Add(-1 * time.Hour)
	f.flights.flights[8] = &entity.Flight{ID: 8, FlightNumber: "GA404", CreatedAt: day32.Add(-72 * time.Hour), UpdatedAt: &updated}

	t.Run("nil watermark pulls everything", func(t *testing.T) {
		flights, err := f.coordinator.PullFlights(ctx, nil)
		if err != nil {
			t.Fatalf("pull: %v", err)
		}
		if len(flights) != 2 {
			t.Fatalf("got %d flights, want 2", len(flights))
		}
	})

	t.Run("watermark filters unchanged flights", func(t *testing.T) {
		since := day32.Add(-2 * time.Hour)
		flights, err := f.coordinator.PullFlights(ctx, &since)
		if err != nil {
			t.Fatalf("pull: %v", err)
		}
		if len(flights) != 1 || flights[0].ID != 8 {
			t.Fatalf("got %+v, want only flight 8", flights)
		}
	})
}
