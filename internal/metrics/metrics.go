// Package metrics records per-run counters for the model writer.
//
// The writer is a batch job, not a server, so counters live in a private
// registry and are dumped once at the end of a run in the Prometheus text
// format, for a node-exporter textfile collector to pick up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the counters for one run. A nil *Recorder records nothing.
type Recorder struct {
	reg *prometheus.Registry

	rowsWritten          prometheus.Counter
	modelsSkipped        *prometheus.CounterVec
	correctionsApplied   prometheus.Counter
	correctionCandidates prometheus.Gauge
	lastRunRows          prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delaymodel_rows_written_total",
			Help: "Total number of model table rows written.",
		}),
		modelsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delaymodel_models_skipped_total",
				Help: "Antenna steps skipped because no geometric model was available.",
			},
			[]string{"antenna"},
		),
		correctionsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delaymodel_corrections_applied_total",
			Help: "Polynomial models modified by the delay correction file.",
		}),
		correctionCandidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "delaymodel_correction_candidates",
			Help: "Polynomial models eligible for correction.",
		}),
		lastRunRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "delaymodel_last_run_rows",
			Help: "Rows in the most recently closed model table.",
		}),
	}
	r.reg.MustRegister(r.rowsWritten, r.modelsSkipped, r.correctionsApplied, r.correctionCandidates, r.lastRunRows)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// RowWritten counts one table row.
func (r *Recorder) RowWritten() {
	if r == nil {
		return
	}
	r.rowsWritten.Inc()
}

// ModelSkipped counts one skipped antenna step.
func (r *Recorder) ModelSkipped(antenna string) {
	if r == nil {
		return
	}
	r.modelsSkipped.WithLabelValues(antenna).Inc()
}

// Corrections records the outcome of applying a correction file.
func (r *Recorder) Corrections(modified, candidates int) {
	if r == nil {
		return
	}
	r.correctionsApplied.Add(float64(modified))
	r.correctionCandidates.Set(float64(candidates))
}

// TableClosed records the final row count of a table.
func (r *Recorder) TableClosed(rows int64) {
	if r == nil {
		return
	}
	r.lastRunRows.Set(float64(rows))
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
