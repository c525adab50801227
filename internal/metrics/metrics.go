// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the interface the service layer records against.
type Recorder interface {
	RecordUpload(duration time.Duration)
	RecordRowsInserted(count int)
	RecordRowsDuplicate(count int)
	RecordRowErrors(count int)
	RecordUploadRejected()
}

// Collector implements Recorder on Prometheus metrics.
type Collector struct {
	uploadDuration  prometheus.Histogram
	rowsInserted    prometheus.Counter
	rowsDuplicate   prometheus.Counter
	rowErrors       prometheus.Counter
	uploadsRejected prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sparktracker_upload_duration_seconds",
			Help:    "Duration of CSV upload processing",
			Buckets: prometheus.DefBuckets,
		}),
		rowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparktracker_rows_inserted_total",
			Help: "Rows persisted as new video records",
		}),
		rowsDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparktracker_rows_duplicate_total",
			Help: "Rows classified as duplicates of stored records",
		}),
		rowErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparktracker_row_errors_total",
			Help: "Rows rejected by per-line validation",
		}),
		uploadsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparktracker_uploads_rejected_total",
			Help: "Uploads rejected before row processing",
		}),
	}

	reg.MustRegister(
		c.uploadDuration,
		c.rowsInserted,
		c.rowsDuplicate,
		c.rowErrors,
		c.uploadsRejected,
	)

	return c
}

func (c *Collector) RecordUpload(duration time.Duration) {
	c.uploadDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordRowsInserted(count int) {
	c.rowsInserted.Add(float64(count))
}

func (c *Collector) RecordRowsDuplicate(count int) {
	c.rowsDuplicate.Add(float64(count))
}

func (c *Collector) RecordRowErrors(count int) {
	c.rowErrors.Add(float64(count))
}

func (c *Collector) RecordUploadRejected() {
	c.uploadsRejected.Inc()
}
