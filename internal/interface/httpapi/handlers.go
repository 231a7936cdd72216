package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gatescan-service/internal/domain/entity"
	"gatescan-service/internal/domain/repository"
	"gatescan-service/internal/usecase"
	"gatescan-service/pkg/bcbp"
	"gatescan-service/pkg/logger"

	"github.com/gorilla/mux"
)

// Handler serves the device-facing and operator-facing HTTP API.
type Handler struct {
	coordinator  *usecase.SyncCoordinator
	flightRepo   repository.FlightRepository
	rejections   repository.RejectionReader
	refCodes     repository.ReferenceCodeRepository
	maxBatchSize int
	logger       logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	coordinator *usecase.SyncCoordinator,
	flightRepo repository.FlightRepository,
	rejections repository.RejectionReader,
	refCodes repository.ReferenceCodeRepository,
	maxBatchSize int,
	log logger.Logger,
) *Handler {
	return &Handler{
		coordinator:  coordinator,
		flightRepo:   flightRepo,
		rejections:   rejections,
		refCodes:     refCodes,
		maxBatchSize: maxBatchSize,
		logger:       log,
	}
}

type scanRequest struct {
	BarcodeValue  string `json:"barcodeValue"`
	BarcodeFormat string `json:"barcodeFormat"`
	DeviceID      string `json:"deviceId"`
	FlightID      *int64 `json:"flightId"`
	ScanTime      string `json:"scanTime"`
}

func (req *scanRequest) toInput(fallbackDevice string) (usecase.ScanInput, bool) {
	scanTime, ok := parseTimestamp(req.ScanTime)
	if !ok {
		return usecase.ScanInput{}, false
	}
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = fallbackDevice
	}
	return usecase.ScanInput{
		BarcodeValue:  req.BarcodeValue,
		BarcodeFormat: req.BarcodeFormat,
		DeviceID:      deviceID,
		FlightID:      req.FlightID,
		ScanTime:      scanTime,
	}, true
}

// CreateScan handles POST /api/scan-data. Accepted scans return 201;
// duplicates return 409 with the same body shape so a device can treat
// both as synced.
func (h *Handler) CreateScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, ok := req.toInput(GetDeviceID(r.Context()))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid scanTime")
		return
	}

	outcome, err := h.coordinator.IngestScan(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyBarcode), errors.Is(err, usecase.ErrFlightUnknown):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("Scan ingestion failed", "error", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
		}
		return
	}

	status := http.StatusCreated
	if outcome.Status == entity.StatusDuplicate {
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]interface{}{
		"status": outcome.Status,
		"event":  outcome.Event,
	})
}

// ListScans handles GET /api/scan-data?flight_id=
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	flightID, err := strconv.ParseInt(r.URL.Query().Get("flight_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "flight_id is required")
		return
	}

	events, err := h.coordinator.ScansByFlight(r.Context(), flightID)
	if err != nil {
		h.logger.Error("Failed to list scans", "error", err, "flightId", flightID)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if events == nil {
		events = []*entity.ScanEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

type bulkSyncRequest struct {
	Decode bool          `json:"decode"`
	Items  []scanRequest `json:"items"`
}

// BulkSync handles POST /api/sync/scan-data/bulk. The response is always
// 200 with one outcome per item; rejected items are reported, not failed.
func (h *Handler) BulkSync(w http.ResponseWriter, r *http.Request) {
	var req bulkSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items must not be empty")
		return
	}
	if h.maxBatchSize > 0 && len(req.Items) > h.maxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "batch exceeds "+strconv.Itoa(h.maxBatchSize)+" items")
		return
	}

	fallbackDevice := GetDeviceID(r.Context())
	items := make([]usecase.ScanInput, 0, len(req.Items))
	for i, item := range req.Items {
		input, ok := item.toInput(fallbackDevice)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid scanTime at index "+strconv.Itoa(i))
			return
		}
		items = append(items, input)
	}

	outcomes := h.coordinator.PushBatch(r.Context(), items, req.Decode)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": outcomes,
	})
}

// PullFlights handles GET /api/sync/flights?last_sync=
func (h *Handler) PullFlights(w http.ResponseWriter, r *http.Request) {
	var since *time.Time
	if raw := r.URL.Query().Get("last_sync"); raw != "" {
		parsed, ok := parseTimestamp(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid last_sync")
			return
		}
		since = &parsed
	}

	flights, err := h.coordinator.PullFlights(r.Context(), since)
	if err != nil {
		h.logger.Error("Flight pull failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if flights == nil {
		flights = []*entity.Flight{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flights":    flights,
		"serverTime": time.Now().UTC(),
	})
}

type decodeRequest struct {
	BarcodeValue string `json:"barcodeValue"`
	ScanEventID  string `json:"scanEventId"`
}

// DecodeBarcode handles POST /api/decode-barcode
func (h *Handler) DecodeBarcode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BarcodeValue == "" {
		writeError(w, http.StatusBadRequest, "barcodeValue is required")
		return
	}

	pass, err := h.coordinator.DecodeBarcode(r.Context(), req.BarcodeValue, req.ScanEventID)
	if err != nil {
		if errors.Is(err, bcbp.ErrMalformed) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error":  "barcode could not be decoded",
				"reason": string(entity.ReasonInvalidFormat),
			})
			return
		}
		h.logger.Error("Decode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, pass)
}

// ListFlights handles GET /api/flights
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.flightRepo.FindActive(r.Context())
	if err != nil {
		h.logger.Error("Failed to list flights", "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if flights == nil {
		flights = []*entity.Flight{}
	}
	writeJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid flight id")
		return
	}

	flight, err := h.flightRepo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get flight", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if flight == nil {
		writeError(w, http.StatusNotFound, "flight not found")
		return
	}
	writeJSON(w, http.StatusOK, flight)
}

// ListRejections handles GET /api/rejection-logs
func (h *Handler) ListRejections(w http.ResponseWriter, r *http.Request) {
	query := repository.RejectionQuery{
		Airline:  r.URL.Query().Get("airline"),
		Reason:   entity.RejectionReason(r.URL.Query().Get("reason")),
		DeviceID: r.URL.Query().Get("device_id"),
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, ok := parseTimestamp(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid since")
			return
		}
		query.Since = &parsed
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		query.Offset = offset
	}

	records, err := h.rejections.Find(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list rejections", "error", err)
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if records == nil {
		records = []*entity.RejectionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ListAirports handles GET /api/codes/airports
func (h *Handler) ListAirports(w http.ResponseWriter, r *http.Request) {
	codes, err := h.refCodes.Airports(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// ListAirlines handles GET /api/codes/airlines
func (h *Handler) ListAirlines(w http.ResponseWriter, r *http.Request) {
	codes, err := h.refCodes.Airlines(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// ListCabinClasses handles GET /api/codes/classes
func (h *Handler) ListCabinClasses(w http.ResponseWriter, r *http.Request) {
	codes, err := h.refCodes.CabinClasses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
