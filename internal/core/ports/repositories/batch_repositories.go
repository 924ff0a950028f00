package repositories

import (
	"context"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// BatchReader defines read operations for batches
type BatchReader interface {
	// FindBatchByID returns the batch with its lines ordered by row number.
	FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error)
}

// BatchWriter defines write operations for batches
type BatchWriter interface {
	// SaveBatch inserts the batch header and all of its lines.
	SaveBatch(ctx context.Context, batch domain.Batch) error

	// UpdateBatch writes the header counters and state.
	UpdateBatch(ctx context.Context, batch domain.Batch) error

	// UpdateBatchLine writes the outcome of one line.
	UpdateBatchLine(ctx context.Context, line domain.BatchLine) error
}

// BatchLocker locks a batch header row.
type BatchLocker interface {
	FindBatchByIDForUpdate(ctx context.Context, batchID string) (*domain.Batch, error)
}

// BatchRepositoryFacade combines all batch repository interfaces
type BatchRepositoryFacade interface {
	BatchReader
	BatchWriter
	BatchLocker
}
