package metrics

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements ports.MetricsRecorder for Prometheus.
type PrometheusRecorder struct {
	postings        *prometheus.CounterVec
	postingLatency  *prometheus.HistogramVec
	reversals       *prometheus.CounterVec
	batchLines      *prometheus.CounterVec
	schedulerItems  *prometheus.CounterVec
	schedulerRuns   prometheus.Counter
	schedulerTiming prometheus.Histogram
	depositMaturity *prometheus.CounterVec
}

var _ ports.MetricsRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors under namespace and registers
// them with reg.
func NewPrometheusRecorder(namespace string, reg prometheus.Registerer) *PrometheusRecorder {
	pr := &PrometheusRecorder{
		postings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "postings_total",
				Help:      "Total number of transaction postings by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		postingLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "posting_duration_seconds",
				Help:      "Duration of a posting unit of work",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		reversals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reversals_total",
				Help:      "Total number of reversals by outcome",
			},
			[]string{"outcome"},
		),
		batchLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batch_lines_total",
				Help:      "Total number of processed batch lines by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		schedulerItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_instructions_total",
				Help:      "Standing order and scheduled transaction executions by result",
			},
			[]string{"result"},
		),
		schedulerRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_runs_total",
				Help:      "Total number of scheduler passes",
			},
		),
		schedulerTiming: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scheduler_run_duration_seconds",
				Help:      "Duration of a scheduler pass",
				Buckets:   prometheus.DefBuckets,
			},
		),
		depositMaturity: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deposit_maturities_total",
				Help:      "Fixed deposit maturities by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		pr.postings,
		pr.postingLatency,
		pr.reversals,
		pr.batchLines,
		pr.schedulerItems,
		pr.schedulerRuns,
		pr.schedulerTiming,
		pr.depositMaturity,
	)
	return pr
}

// RecordPosting records a posting attempt.
func (p *PrometheusRecorder) RecordPosting(txType domain.TransactionType, success bool, duration time.Duration) {
	p.postings.WithLabelValues(string(txType), outcome(success)).Inc()
	p.postingLatency.WithLabelValues(string(txType)).Observe(duration.Seconds())
}

// RecordReversal records a reversal attempt.
func (p *PrometheusRecorder) RecordReversal(success bool) {
	p.reversals.WithLabelValues(outcome(success)).Inc()
}

// RecordBatchLine records a single processed batch line.
func (p *PrometheusRecorder) RecordBatchLine(kind domain.BatchKind, success bool) {
	p.batchLines.WithLabelValues(string(kind), outcome(success)).Inc()
}

// RecordSchedulerRun records the outcome counts of a scheduler pass.
func (p *PrometheusRecorder) RecordSchedulerRun(result domain.SchedulerRunResult, duration time.Duration) {
	p.schedulerRuns.Inc()
	p.schedulerTiming.Observe(duration.Seconds())
	p.schedulerItems.WithLabelValues("rearmed").Add(float64(result.Rearmed))
	p.schedulerItems.WithLabelValues("expired").Add(float64(result.Expired))
	p.schedulerItems.WithLabelValues("failed").Add(float64(result.Failed))
	p.schedulerItems.WithLabelValues("scheduled_processed").Add(float64(result.ScheduledExecuted))
	p.schedulerItems.WithLabelValues("scheduled_failed").Add(float64(result.ScheduledFailed))
}

// RecordDepositMatured records a maturity attempt.
func (p *PrometheusRecorder) RecordDepositMatured(success bool) {
	p.depositMaturity.WithLabelValues(outcome(success)).Inc()
}
