package ports

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// Clock provides the current instant and the current business date.
type Clock interface {
	Now() time.Time
	// Today is Now truncated to midnight UTC.
	Today() time.Time
}

// EventPublisher ships ledger events to downstream consumers. It is called
// after the unit of work that produced the event has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.LedgerEvent) error
	Close() error
}

// MetricsRecorder records engine level metrics.
type MetricsRecorder interface {
	RecordPosting(txType domain.TransactionType, success bool, duration time.Duration)
	RecordReversal(success bool)
	RecordBatchLine(kind domain.BatchKind, success bool)
	RecordSchedulerRun(result domain.SchedulerRunResult, duration time.Duration)
	RecordDepositMatured(success bool)
}

// RunLocker serialises background runs across instances.
type RunLocker interface {
	// TryLock returns a release func and true when the lock was taken.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
