// Package metrics records operational metrics for report runs behind a small
// pluggable Backend.
//
// The default backend is a no-op, so instrumentation calls are always safe
// when no metrics system is configured. Concrete systems live in
// subpackages (prompush, datadog) and are installed once with SetBackend.
package metrics

import "time"

// Metric names shared by every backend.
const (
	SectionTotal    = "mlreport_section_total"
	SectionDuration = "mlreport_section_duration_seconds"
	RecordsTotal    = "mlreport_records_total"
	FetchTotal      = "mlreport_fetch_total"
	FetchDuration   = "mlreport_fetch_duration_seconds"
	RowsTotal       = "mlreport_rows_persisted_total"
	BatchesTotal    = "mlreport_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordSection counts one report section run and its duration.
func RecordSection(report, section string, err error, d time.Duration) {
	lbls := Labels{
		"report":  report,
		"section": section,
		"status":  status(err),
	}
	backend.IncCounter(SectionTotal, 1, lbls)
	backend.ObserveHistogram(SectionDuration, d.Seconds(), lbls)
}

// RecordRecords adds delta to the number of records read from dataset.
func RecordRecords(dataset string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{"dataset": dataset})
}

// RecordFetch counts one remote enrichment request and its latency. Cache
// hits are not recorded.
func RecordFetch(source string, err error, d time.Duration) {
	lbls := Labels{
		"source": source,
		"status": status(err),
	}
	backend.IncCounter(FetchTotal, 1, lbls)
	backend.ObserveHistogram(FetchDuration, d.Seconds(), lbls)
}

// RecordPersisted counts result rows written to storage and the batches
// used to write them.
func RecordPersisted(kind string, rows, batches int64) {
	if rows > 0 {
		backend.IncCounter(RowsTotal, float64(rows), Labels{"storage": kind})
	}
	if batches > 0 {
		backend.IncCounter(BatchesTotal, float64(batches), Labels{"storage": kind})
	}
}
