package metrics

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
)

// NoOpRecorder is a no-op implementation of ports.MetricsRecorder.
// It's used as the default recorder when metrics are not needed.
type NoOpRecorder struct{}

var _ ports.MetricsRecorder = NoOpRecorder{}

// RecordPosting does nothing.
func (NoOpRecorder) RecordPosting(domain.TransactionType, bool, time.Duration) {}

// RecordReversal does nothing.
func (NoOpRecorder) RecordReversal(bool) {}

// RecordBatchLine does nothing.
func (NoOpRecorder) RecordBatchLine(domain.BatchKind, bool) {}

// RecordSchedulerRun does nothing.
func (NoOpRecorder) RecordSchedulerRun(domain.SchedulerRunResult, time.Duration) {}

// RecordDepositMatured does nothing.
func (NoOpRecorder) RecordDepositMatured(bool) {}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
