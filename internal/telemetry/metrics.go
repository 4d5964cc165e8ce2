package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SubmissionsTotal *prometheus.CounterVec
	LabelFilesTotal  *prometheus.CounterVec
	CarrierErrors    *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dhlbridge_requests_total",
				Help: "Total number of requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dhlbridge_request_duration_seconds",
				Help:    "Request duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SubmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dhlbridge_batch_submissions_total",
				Help: "Total batch submissions by status",
			},
			[]string{"status"},
		),
		LabelFilesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dhlbridge_label_files_total",
				Help: "Total label file operations by kind and action",
			},
			[]string{"kind", "action"},
		),
		CarrierErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dhlbridge_carrier_errors_total",
				Help: "Total carrier API errors by operation",
			},
			[]string{"operation"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSubmission records a batch submission outcome.
func (m *Metrics) RecordSubmission(status string) {
	m.SubmissionsTotal.WithLabelValues(status).Inc()
}

// RecordCarrierError records a carrier API error metric.
func (m *Metrics) RecordCarrierError(operation string) {
	m.CarrierErrors.WithLabelValues(operation).Inc()
}
