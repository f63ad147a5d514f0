package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "media_store",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Upload and update payload writes, labelled by media kind
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Total payload writes by media kind and outcome",
		},
		[]string{"kind", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Total bytes written to the object store",
		},
		[]string{"kind"},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Total object store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "media_store",
			Subsystem: "storage",
			Name:      "duration_seconds",
			Help:      "Object store operation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"backend", "operation"},
	)

	PresignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "media_store",
			Subsystem: "media",
			Name:      "presign_duration_seconds",
			Help:      "Presigned URL generation duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Objects written without a matching active record
	OrphanedObjectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "media",
			Name:      "orphaned_objects_total",
			Help:      "Objects left in storage without a matching active record",
		},
		[]string{"reason"},
	)

	ReconcileRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Total orphan reconciliation sweeps",
		},
		[]string{"status"},
	)

	ReconcileRelocatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "media_store",
			Subsystem: "reconcile",
			Name:      "relocated_objects_total",
			Help:      "Orphaned objects moved under the disabled prefix",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a payload write
func RecordUpload(kind, status string, bytes int64) {
	UploadsTotal.WithLabelValues(kind, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(kind).Add(float64(bytes))
	}
}

// RecordStorageOperation records an object store call
func RecordStorageOperation(backend, operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	StorageDuration.WithLabelValues(backend, operation).Observe(durationSec)
}

func RecordPresign(durationSec float64) {
	PresignDuration.Observe(durationSec)
}

func RecordOrphanedObject(reason string) {
	OrphanedObjectsTotal.WithLabelValues(reason).Inc()
}

// RecordReconcileRun records a finished sweep and the objects it moved
func RecordReconcileRun(status string, relocated int) {
	ReconcileRunsTotal.WithLabelValues(status).Inc()
	if relocated > 0 {
		ReconcileRelocatedTotal.Add(float64(relocated))
	}
}
