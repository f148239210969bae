// Package metrics collects ledger operation metrics.
package metrics

import "time"

// Collector defines the interface for collecting ledger metrics
type Collector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Lock metrics
	RecordLockWait(duration time.Duration)

	// Error metrics
	RecordError(operation, errType string)
	RecordPartialFailure(operation string)

	// Transaction metrics
	RecordTransaction(operation string, amount float64)
}

// NoopCollector is a no-op implementation of Collector
type NoopCollector struct{}

func (n *NoopCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopCollector) RecordOperationResult(string, string)          {}
func (n *NoopCollector) RecordLockWait(time.Duration)                  {}
func (n *NoopCollector) RecordError(string, string)                    {}
func (n *NoopCollector) RecordPartialFailure(string)                   {}
func (n *NoopCollector) RecordTransaction(string, float64)             {}
