package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ScansAccepted  prometheus.Counter
	ScansDuplicate prometheus.Counter
	ScansRejected  *prometheus.CounterVec
	DecodeTime     prometheus.Histogram
	SyncBatchSize  prometheus.Histogram
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ScansAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_accepted_total",
			Help:      "The total number of scans accepted into the ledger",
		}),
		ScansDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_duplicate_total",
			Help:      "The total number of scans deduplicated by the ledger",
		}),
		ScansRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_rejected_total",
			Help:      "The total number of scans rejected, by reason",
		}, []string{"reason"}),
		DecodeTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "barcode_decode_time_seconds",
			Help:      "Time taken to decode boarding pass barcodes",
			Buckets:   prometheus.DefBuckets,
		}),
		SyncBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_batch_size",
			Help:      "Number of items per offline sync batch",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
