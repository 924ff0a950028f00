package services

import (
	"context"
	"io"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
)

// BatchSvcFacade defines bulk processing operations
type BatchSvcFacade interface {
	// ValidateRows resolves every row or fails naming the first bad row.
	ValidateRows(ctx context.Context, kind domain.BatchKind, rows []domain.BatchRow) ([]domain.BatchLine, error)

	// CreateBatch validates the rows and stores a validated batch.
	CreateBatch(ctx context.Context, req dto.CreateBatchRequest, actor string) (*domain.Batch, error)

	// ImportBatchCSV reads rows from CSV (header on row 1) and stores a validated batch.
	ImportBatchCSV(ctx context.Context, params dto.ImportBatchParams, r io.Reader, actor string) (*domain.Batch, error)

	GetBatch(ctx context.Context, batchID string) (*domain.Batch, error)

	// ProcessBatch posts every pending line in its own unit of work. Line
	// failures are recorded and never abort the run.
	ProcessBatch(ctx context.Context, batchID string, actor string) (*domain.Batch, error)

	CancelBatch(ctx context.Context, batchID string, actor string) (*domain.Batch, error)
}
