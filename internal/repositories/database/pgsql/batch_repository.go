package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/models"
	"github.com/SscSPs/core_banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxBatchRepository struct {
	BaseRepository
}

var _ portsrepo.BatchRepositoryFacade = (*PgxBatchRepository)(nil)

const batchColumns = `
	batch_id, reference, kind, currency_code, description, state, total_lines,
	total_amount, success_count, failed_count, processed_count, error_log,
	processed_by, processed_at, created_at, created_by, last_updated_at, last_updated_by`

const batchLineColumns = `
	line_id, batch_id, row_number, account_id, destination_account_id, amount,
	reference, description, state, error_message, transaction_id`

func (r *PgxBatchRepository) getBatch(ctx context.Context, batchID string, lock bool) (*domain.Batch, error) {
	if !isUUID(batchID) {
		return nil, fmt.Errorf("%w: batch %s", apperrors.ErrNotFound, batchID)
	}
	query := `SELECT` + batchColumns + ` FROM batches WHERE batch_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	rows, err := r.db.Query(ctx, query, batchID)
	if err != nil {
		return nil, mapError(err, "query batch")
	}
	header, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Batch])
	if err != nil {
		return nil, notFound(err, "batch "+batchID)
	}

	rows, err = r.db.Query(ctx, `SELECT`+batchLineColumns+` FROM batch_lines WHERE batch_id = $1 ORDER BY row_number`, batchID)
	if err != nil {
		return nil, mapError(err, "query batch lines")
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.BatchLine])
	if err != nil {
		return nil, mapError(err, "collect batch line rows")
	}

	b := mapping.ToDomainBatch(header)
	b.Lines = make([]domain.BatchLine, 0, len(lines))
	for _, l := range lines {
		b.Lines = append(b.Lines, mapping.ToDomainBatchLine(l))
	}
	return &b, nil
}

// FindBatchByID returns the batch with its lines ordered by row number.
func (r *PgxBatchRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error) {
	return r.getBatch(ctx, batchID, false)
}

// FindBatchByIDForUpdate locks the header row only; lines are guarded by it.
func (r *PgxBatchRepository) FindBatchByIDForUpdate(ctx context.Context, batchID string) (*domain.Batch, error) {
	return r.getBatch(ctx, batchID, true)
}

// SaveBatch inserts the header and every line in one round trip.
func (r *PgxBatchRepository) SaveBatch(ctx context.Context, batch domain.Batch) error {
	h := mapping.ToModelBatch(batch)
	b := &pgx.Batch{}
	keys := []string{batch.BatchID}
	b.Queue(`
		INSERT INTO batches (`+batchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		h.BatchID, h.Reference, h.Kind, h.CurrencyCode, h.Description, h.State, h.TotalLines,
		h.TotalAmount, h.SuccessCount, h.FailedCount, h.ProcessedCount, h.ErrorLog,
		h.ProcessedBy, h.ProcessedAt, h.CreatedAt, h.CreatedBy, h.LastUpdatedAt, h.LastUpdatedBy,
	)
	for _, line := range batch.Lines {
		line.BatchID = batch.BatchID
		l := mapping.ToModelBatchLine(line)
		b.Queue(`
			INSERT INTO batch_lines (`+batchLineColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			l.LineID, l.BatchID, l.RowNumber, l.AccountID, l.DestinationAccountID, l.Amount,
			l.Reference, l.Description, l.State, l.ErrorMessage, l.TransactionID,
		)
		keys = append(keys, fmt.Sprintf("%s line %d", batch.BatchID, line.RowNumber))
	}
	return r.execBatch(ctx, b, "save batch", keys)
}

// UpdateBatch writes the header counters and state.
func (r *PgxBatchRepository) UpdateBatch(ctx context.Context, batch domain.Batch) error {
	h := mapping.ToModelBatch(batch)
	ct, err := r.db.Exec(ctx, `
		UPDATE batches
		SET state = $2, success_count = $3, failed_count = $4, processed_count = $5,
			error_log = $6, processed_by = $7, processed_at = $8, last_updated_at = $9, last_updated_by = $10
		WHERE batch_id = $1`,
		h.BatchID, h.State, h.SuccessCount, h.FailedCount, h.ProcessedCount,
		h.ErrorLog, h.ProcessedBy, h.ProcessedAt, h.LastUpdatedAt, h.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update batch "+batch.BatchID)
	}
	return requireAffected(ct, "batch "+batch.BatchID)
}

func (r *PgxBatchRepository) UpdateBatchLine(ctx context.Context, line domain.BatchLine) error {
	l := mapping.ToModelBatchLine(line)
	ct, err := r.db.Exec(ctx, `
		UPDATE batch_lines
		SET state = $2, error_message = $3, transaction_id = $4
		WHERE line_id = $1`,
		l.LineID, l.State, l.ErrorMessage, l.TransactionID,
	)
	if err != nil {
		return mapError(err, "update batch line "+line.LineID)
	}
	return requireAffected(ct, "batch line "+line.LineID)
}
