// Package metrics holds the Prometheus collectors for the batch pipeline.
//
// All collectors live on a dedicated registry so tests can build isolated
// instances and the server exposes exactly what it registers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records batch pipeline events.
type Recorder struct {
	reg *prometheus.Registry

	batchesCreated     prometheus.Counter
	transitions        *prometheus.CounterVec // by target status
	validationFailures *prometheus.CounterVec // by section
	validationDuration prometheus.Histogram
	validatedRows      prometheus.Counter
	submissions        *prometheus.CounterVec // by result
}

// New builds a Recorder with its own registry, including Go runtime and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		batchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulk_batches_created_total",
			Help: "Batches allocated by addContentToBatch.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_batch_transitions_total",
			Help: "Batch state transitions, partitioned by target status.",
		}, []string{"status"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_validation_failures_total",
			Help: "Field validation failures, partitioned by row section.",
		}, []string{"section"}),
		validationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bulk_validation_duration_seconds",
			Help:    "Time spent parsing and validating one batch of CSV content.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		validatedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bulk_validated_rows_total",
			Help: "CSV data rows run through the validator.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bulk_submissions_total",
			Help: "Per-row submission attempts during finalize, partitioned by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		r.batchesCreated,
		r.transitions,
		r.validationFailures,
		r.validationDuration,
		r.validatedRows,
		r.submissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

func (r *Recorder) BatchCreated() {
	if r == nil {
		return
	}
	r.batchesCreated.Inc()
}

func (r *Recorder) Transition(status string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(status).Inc()
}

// Validated records one validation run.
func (r *Recorder) Validated(rows int, failuresBySection map[string]int, took time.Duration) {
	if r == nil {
		return
	}
	r.validatedRows.Add(float64(rows))
	r.validationDuration.Observe(took.Seconds())
	for section, n := range failuresBySection {
		r.validationFailures.WithLabelValues(section).Add(float64(n))
	}
}

func (r *Recorder) Submission(ok bool) {
	if r == nil {
		return
	}
	result := "created"
	if !ok {
		result = "failed"
	}
	r.submissions.WithLabelValues(result).Inc()
}
