// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A report run is a short-lived batch process, so metrics are collected in
// a private registry and pushed once at the end instead of being scraped.
// The Pushgateway "job" grouping key is the report name.
package prompush

import (
	"fmt"

	"movielens/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string
	reg        *prometheus.Registry

	sectionCounter  *prometheus.CounterVec
	sectionDuration *prometheus.SummaryVec

	recordCounter *prometheus.CounterVec

	fetchCounter  *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec

	rowsCounter  *prometheus.CounterVec
	batchCounter *prometheus.CounterVec
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name, normally the report name.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "mlreport"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),

		sectionCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.SectionTotal,
				Help: "Report sections computed, partitioned by section and status.",
			},
			[]string{"section", "status"},
		),
		sectionDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.SectionDuration,
				Help:       "Time spent computing a report section in seconds.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"section", "status"},
		),
		recordCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RecordsTotal,
				Help: "Dataset records read, partitioned by dataset.",
			},
			[]string{"dataset"},
		),
		fetchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.FetchTotal,
				Help: "Remote enrichment requests, partitioned by source and status.",
			},
			[]string{"source", "status"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metrics.FetchDuration,
				Help:    "Latency of remote enrichment requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
			},
			[]string{"source", "status"},
		),
		rowsCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RowsTotal,
				Help: "Result rows written to storage.",
			},
			[]string{"storage"},
		),
		batchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.BatchesTotal,
				Help: "Storage batches flushed.",
			},
			[]string{"storage"},
		),
	}

	for name, c := range map[string]prometheus.Collector{
		"section counter": b.sectionCounter,
		"section summary": b.sectionDuration,
		"record counter":  b.recordCounter,
		"fetch counter":   b.fetchCounter,
		"fetch histogram": b.fetchDuration,
		"rows counter":    b.rowsCounter,
		"batch counter":   b.batchCounter,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	var vec *prometheus.CounterVec
	var values []string
	switch name {
	case metrics.SectionTotal:
		vec, values = b.sectionCounter, []string{labels["section"], labels["status"]}
	case metrics.RecordsTotal:
		vec, values = b.recordCounter, []string{labels["dataset"]}
	case metrics.FetchTotal:
		vec, values = b.fetchCounter, []string{labels["source"], labels["status"]}
	case metrics.RowsTotal:
		vec, values = b.rowsCounter, []string{labels["storage"]}
	case metrics.BatchesTotal:
		vec, values = b.batchCounter, []string{labels["storage"]}
	default:
		return
	}
	if vec == nil {
		return
	}
	vec.WithLabelValues(values...).Add(delta)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.SectionDuration:
		if b.sectionDuration != nil {
			b.sectionDuration.WithLabelValues(labels["section"], labels["status"]).Observe(value)
		}
	case metrics.FetchDuration:
		if b.fetchDuration != nil {
			b.fetchDuration.WithLabelValues(labels["source"], labels["status"]).Observe(value)
		}
	}
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
