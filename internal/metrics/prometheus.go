package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports ledger metrics to prometheus.
type PrometheusCollector struct {
	opDuration      *prometheus.HistogramVec
	opResults       *prometheus.CounterVec
	lockWait        prometheus.Histogram
	errors          *prometheus.CounterVec
	partialFailures *prometheus.CounterVec
	volume          *prometheus.CounterVec
}

// NewPrometheusCollector creates the collector and registers it on reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		opResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by result.",
		}, []string{"operation", "result"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "lock_wait_seconds",
			Help:      "Time spent acquiring account locks.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2, 5},
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "errors_total",
			Help:      "Ledger errors by kind.",
		}, []string{"operation", "kind"}),
		partialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "partial_failures_total",
			Help:      "Detected invariant violations needing manual reconciliation.",
		}, []string{"operation"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "volume_total",
			Help:      "Amount moved by committed operations.",
		}, []string{"operation"}),
	}
	reg.MustRegister(c.opDuration, c.opResults, c.lockWait, c.errors, c.partialFailures, c.volume)
	return c
}

func (c *PrometheusCollector) RecordOperationDuration(operation string, d time.Duration) {
	c.opDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *PrometheusCollector) RecordOperationResult(operation, result string) {
	c.opResults.WithLabelValues(operation, result).Inc()
}

func (c *PrometheusCollector) RecordLockWait(d time.Duration) {
	c.lockWait.Observe(d.Seconds())
}

func (c *PrometheusCollector) RecordError(operation, errType string) {
	c.errors.WithLabelValues(operation, errType).Inc()
}

func (c *PrometheusCollector) RecordPartialFailure(operation string) {
	c.partialFailures.WithLabelValues(operation).Inc()
}

func (c *PrometheusCollector) RecordTransaction(operation string, amount float64) {
	c.volume.WithLabelValues(operation).Add(amount)
}
