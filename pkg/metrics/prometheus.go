package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	evaluations   *prometheus.CounterVec
	sweepProgress *prometheus.GaugeVec
	paramLookups  *prometheus.CounterVec
	signals       *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered with the default Prometheus registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramsweep_evaluations_total",
				Help: "Parameter tuple evaluations by outcome (result, no_trades, no_data, error)",
			},
			[]string{"strategy", "outcome"},
		),
		sweepProgress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paramsweep_sweep_progress_ratio",
				Help: "Completed fraction of the running sweep",
			},
			[]string{"strategy"},
		),
		paramLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramsweep_param_lookups_total",
				Help: "Parameter store lookups by result (hit, miss)",
			},
			[]string{"strategy", "result"},
		),
		signals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramsweep_live_signals_total",
				Help: "Live signals generated by action",
			},
			[]string{"strategy", "action"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paramsweep_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paramsweep_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEvaluation counts one evaluated parameter tuple.
func (r *Recorder) RecordEvaluation(strategy, outcome string) {
	r.evaluations.WithLabelValues(strategy, outcome).Inc()
}

// RecordSweepProgress exports completed/total for a running sweep.
func (r *Recorder) RecordSweepProgress(strategy string, completed, total int) {
	if total <= 0 {
		return
	}
	r.sweepProgress.WithLabelValues(strategy).Set(float64(completed) / float64(total))
}

// RecordParamLookup counts a parameter store lookup.
func (r *Recorder) RecordParamLookup(strategy, result string) {
	r.paramLookups.WithLabelValues(strategy, result).Inc()
}

// RecordSignal counts a generated live signal.
func (r *Recorder) RecordSignal(strategy, action string) {
	r.signals.WithLabelValues(strategy, action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
