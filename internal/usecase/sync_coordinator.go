package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"
	"gatescan-service/pkg/bcbp"
	"gatescan-service/pkg/logger"
	"gatescan-service/pkg/metrics"
)

var (
	// ErrEmptyBarcode is returned when a submission carries no barcode value.
	ErrEmptyBarcode = errors.New("barcode value is required")
	// ErrFlightUnknown is returned when a submission references a flight
	// that does not exist.
	ErrFlightUnknown = errors.New("flight not found")
)

// ScanInput is one scan submission from a gate device.
type ScanInput struct {
	BarcodeValue  string
	BarcodeFormat string
	DeviceID      string
	FlightID      *int64
	ScanTime      time.Time
}

// ScanOutcome is the definite per-scan result reported back to the device.
type ScanOutcome struct {
	Status entity.AcceptStatus
	Event  *entity.ScanEvent
}

// BatchItemOutcome is the result for one item of a bulk push. Every item
// gets exactly one outcome; rejected and errored items never abort the
// rest of the batch.
type BatchItemOutcome struct {
	Index    int                    `json:"index"`
	Status   string                 `json:"status"` // accepted | duplicate | rejected | error
	Reason   entity.RejectionReason `json:"reason,omitempty"`
	Pass     *bcbp.BoardingPass     `json:"boardingPass,omitempty"`
	ErrorMsg string                 `json:"error,omitempty"`
}

const (
	batchStatusAccepted  = "accepted"
	batchStatusDuplicate = "duplicate"
	batchStatusRejected  = "rejected"
	batchStatusError     = "error"
)

// SyncCoordinator orchestrates scan ingestion, bulk offline replay and
// incremental flight pulls. It composes the decoder, the ledger and the
// rejection sink; the ledger is the only shared mutable state, so the
// coordinator itself is safe for concurrent use.
type SyncCoordinator struct {
	ledger     repository.ScanLedger
	flightRepo repository.FlightRepository
	passRepo   repository.BoardingPassRepository
	rejections repository.RejectionRecorder
	metrics    *metrics.Metrics
	logger     logger.Logger
	refLoc     *time.Location
	now        func() time.Time
}

// NewSyncCoordinator creates a new sync coordinator
func NewSyncCoordinator(
	ledger repository.ScanLedger,
	flightRepo repository.FlightRepository,
	passRepo repository.BoardingPassRepository,
	rejections repository.RejectionRecorder,
	m *metrics.Metrics,
	log logger.Logger,
	refLoc *time.Location,
) *SyncCoordinator {
	return &SyncCoordinator{
		ledger:     ledger,
		flightRepo: flightRepo,
		passRepo:   passRepo,
		rejections: rejections,
		metrics:    m,
		logger:     log,
		refLoc:     refLoc,
		now:        time.Now,
	}
}

// IngestScan validates and records a single scan. Duplicates are a
// successful outcome; only storage failures return an error.
func (sc *SyncCoordinator) IngestScan(ctx context.Context, input ScanInput) (*ScanOutcome, error) {
	if input.BarcodeValue == "" {
		return nil, ErrEmptyBarcode
	}

	if input.FlightID != nil {
		flight, err := sc.flightRepo.GetByID(ctx, *input.FlightID)
		if err != nil {
			return nil, err
		}
		if flight == nil {
			return nil, ErrFlightUnknown
		}
	}

	event := sc.buildEvent(input)
	status, err := sc.ledger.TryAccept(ctx, event)
	if err != nil {
		sc.metrics.ErrorsCount.WithLabelValues("ingest_scan").Inc()
		return nil, err
	}

	sc.countStatus(status)
	sc.logger.Info("Scan recorded",
		"status", status,
		"deviceId", input.DeviceID,
		"flightId", input.FlightID)

	return &ScanOutcome{Status: status, Event: event}, nil
}

// PushBatch replays a batch of scans collected while a device was offline.
// Every item is processed independently: one bad item never rolls back or
// blocks the others, and replaying a whole batch is safe because already
// accepted items come back as duplicates.
func (sc *SyncCoordinator) PushBatch(ctx context.Context, items []ScanInput, decode bool) []BatchItemOutcome {
	sc.metrics.SyncBatchSize.Observe(float64(len(items)))

	outcomes := make([]BatchItemOutcome, 0, len(items))
	for i, item := range items {
		outcome := sc.pushOne(ctx, item, decode)
		outcome.Index = i
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (sc *SyncCoordinator) pushOne(ctx context.Context, item ScanInput, decode bool) BatchItemOutcome {
	if item.BarcodeValue == "" {
		return BatchItemOutcome{Status: batchStatusError, ErrorMsg: ErrEmptyBarcode.Error()}
	}

	if item.FlightID != nil {
		flight, err := sc.flightRepo.GetByID(ctx, *item.FlightID)
		if err != nil {
			sc.metrics.ErrorsCount.WithLabelValues("push_batch").Inc()
			return BatchItemOutcome{Status: batchStatusError, ErrorMsg: err.Error()}
		}
		if flight == nil {
			sc.rejectAudit(ctx, item, entity.ReasonError, nil)
			return BatchItemOutcome{Status: batchStatusError, ErrorMsg: ErrFlightUnknown.Error()}
		}
	}

	var pass *bcbp.BoardingPass
	if decode {
		decoded, err := sc.decodeTimed(item.BarcodeValue)
		if err != nil {
			sc.metrics.ScansRejected.WithLabelValues(string(entity.ReasonInvalidFormat)).Inc()
			sc.rejectAudit(ctx, item, entity.ReasonInvalidFormat, nil)
			return BatchItemOutcome{Status: batchStatusRejected, Reason: entity.ReasonInvalidFormat}
		}
		pass = decoded

		if expected, actual, ok := sc.checkFlightDate(pass); !ok {
			sc.metrics.ScansRejected.WithLabelValues(string(entity.ReasonDateMismatch)).Inc()
			rec := &entity.RejectionRecord{
				ExpectedDate: expected,
				ActualDate:   actual,
				FlightNumber: pass.FlightNumber,
				Airline:      pass.AirlineCode,
			}
			sc.rejectAudit(ctx, item, entity.ReasonDateMismatch, rec)
			// The decode itself succeeded; the pass goes back to the caller
			// so the device can show which flight the passenger is booked on.
			return BatchItemOutcome{Status: batchStatusRejected, Reason: entity.ReasonDateMismatch, Pass: pass}
		}
	}

	event := sc.buildEvent(item)
	status, err := sc.ledger.TryAccept(ctx, event)
	if err != nil {
		sc.metrics.ErrorsCount.WithLabelValues("push_batch").Inc()
		return BatchItemOutcome{Status: batchStatusError, ErrorMsg: err.Error()}
	}
	sc.countStatus(status)

	if pass != nil && status == entity.StatusAccepted {
		sc.persistPass(ctx, item.BarcodeValue, pass, event.ID)
	}

	return BatchItemOutcome{Status: string(status), Pass: pass}
}

// DecodeBarcode decodes a raw barcode payload without touching the ledger
// and stores the result for later lookup, optionally linked to an already
// accepted scan event.
func (sc *SyncCoordinator) DecodeBarcode(ctx context.Context, raw, scanEventID string) (*bcbp.BoardingPass, error) {
	pass, err := sc.decodeTimed(raw)
	if err != nil {
		sc.metrics.ScansRejected.WithLabelValues(string(entity.ReasonInvalidFormat)).Inc()
		sc.rejections.Record(ctx, &entity.RejectionRecord{
			BarcodeValue: raw,
			Reason:       entity.ReasonInvalidFormat,
			RejectedAt:   sc.now(),
		})
		return nil, err
	}

	sc.persistPass(ctx, raw, pass, scanEventID)
	return pass, nil
}

// PullFlights returns flights created or modified since the device's last
// sync watermark; a nil watermark returns everything.
func (sc *SyncCoordinator) PullFlights(ctx context.Context, since *time.Time) ([]*entity.Flight, error) {
	flights, err := sc.flightRepo.FindChangedSince(ctx, since)
	if err != nil {
		sc.metrics.ErrorsCount.WithLabelValues("pull_flights").Inc()
		return nil, err
	}
	return flights, nil
}

// ScansByFlight lists the accepted scans for one flight.
func (sc *SyncCoordinator) ScansByFlight(ctx context.Context, flightID int64) ([]*entity.ScanEvent, error) {
	return sc.ledger.FindByFlight(ctx, flightID)
}

func (sc *SyncCoordinator) buildEvent(input ScanInput) *entity.ScanEvent {
	scanTime := input.ScanTime
	if scanTime.IsZero() {
		scanTime = sc.now()
	}
	return &entity.ScanEvent{
		BarcodeValue:  input.BarcodeValue,
		BarcodeFormat: input.BarcodeFormat,
		DeviceID:      input.DeviceID,
		FlightID:      input.FlightID,
		ScanTime:      scanTime,
	}
}

func (sc *SyncCoordinator) decodeTimed(raw string) (*bcbp.BoardingPass, error) {
	start := sc.now()
	pass, err := bcbp.Decode(bcbp.Normalize(raw))
	sc.metrics.DecodeTime.Observe(time.Since(start).Seconds())
	return pass, err
}

// checkFlightDate resolves the barcode's Julian day against today in the
// deployment's reference timezone. The year is not encoded in the barcode,
// so the current year is assumed.
func (sc *SyncCoordinator) checkFlightDate(pass *bcbp.BoardingPass) (expected, actual string, ok bool) {
	today := sc.now().In(sc.refLoc)
	expected = fmt.Sprintf("%03d", today.YearDay())
	actual = pass.FlightDateJulian
	return expected, actual, expected == actual
}

func (sc *SyncCoordinator) countStatus(status entity.AcceptStatus) {
	switch status {
	case entity.StatusAccepted:
		sc.metrics.ScansAccepted.Inc()
	case entity.StatusDuplicate:
		sc.metrics.ScansDuplicate.Inc()
	}
}

func (sc *SyncCoordinator) rejectAudit(ctx context.Context, item ScanInput, reason entity.RejectionReason, rec *entity.RejectionRecord) {
	if rec == nil {
		rec = &entity.RejectionRecord{}
	}
	rec.BarcodeValue = item.BarcodeValue
	rec.BarcodeFormat = item.BarcodeFormat
	rec.Reason = reason
	rec.DeviceID = item.DeviceID
	rec.RejectedAt = sc.now()
	sc.rejections.Record(ctx, rec)
}

func (sc *SyncCoordinator) persistPass(ctx context.Context, barcode string, pass *bcbp.BoardingPass, eventID string) {
	err := sc.passRepo.Save(ctx, &entity.DecodedPass{
		BarcodeValue: barcode,
		Pass:         *pass,
		ScanEventID:  eventID,
	})
	if err != nil {
		// Lookup storage is best effort; the scan itself is already safe.
		sc.logger.Warn("Failed to store decoded pass", "error", err, "barcode", barcode)
	}
}
