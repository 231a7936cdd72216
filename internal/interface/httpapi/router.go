package httpapi

import (
	"net/http"

	"gatescan-service/internal/infrastructure/auth"
	"gatescan-service/pkg/logger"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes. Everything under /api requires a device
// token; /health and /metrics are open for probes and scrapers.
func NewRouter(
	h *Handler,
	jwtManager *auth.JWTManager,
	limiter *RateLimiter,
	metricsHandler http.Handler,
	log logger.Logger,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogging(log))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(RequireAuth(jwtManager))

	// Ingestion endpoints are the only rate-limited surface.
	api.Handle("/scan-data", limiter.Middleware(http.HandlerFunc(h.CreateScan))).Methods(http.MethodPost)
	api.Handle("/sync/scan-data/bulk", limiter.Middleware(http.HandlerFunc(h.BulkSync))).Methods(http.MethodPost)

	api.HandleFunc("/scan-data", h.ListScans).Methods(http.MethodGet)
	api.HandleFunc("/sync/flights", h.PullFlights).Methods(http.MethodGet)
	api.HandleFunc("/decode-barcode", h.DecodeBarcode).Methods(http.MethodPost)

	api.HandleFunc("/flights", h.ListFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/rejection-logs", h.ListRejections).Methods(http.MethodGet)

	api.HandleFunc("/codes/airports", h.ListAirports).Methods(http.MethodGet)
	api.HandleFunc("/codes/airlines", h.ListAirlines).Methods(http.MethodGet)
	api.HandleFunc("/codes/classes", h.ListCabinClasses).Methods(http.MethodGet)

	return r
}
