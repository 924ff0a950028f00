package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// ScheduledReader defines read operations for scheduled transactions
type ScheduledReader interface {
	FindScheduledByID(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error)

	// FindDueScheduled returns auto-processed entries still scheduled on or
	// before today, oldest first.
	FindDueScheduled(ctx context.Context, today time.Time) ([]domain.ScheduledTransaction, error)
}

// ScheduledWriter defines write operations for scheduled transactions
type ScheduledWriter interface {
	SaveScheduled(ctx context.Context, scheduled domain.ScheduledTransaction) error
	UpdateScheduled(ctx context.Context, scheduled domain.ScheduledTransaction) error
}

// ScheduledLocker locks a scheduled transaction row.
type ScheduledLocker interface {
	FindScheduledByIDForUpdate(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error)
}

// ScheduledRepositoryFacade combines all scheduled transaction repository interfaces
type ScheduledRepositoryFacade interface {
	ScheduledReader
	ScheduledWriter
	ScheduledLocker
}
