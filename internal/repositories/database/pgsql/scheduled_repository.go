package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/core_banking_ledger/internal/models"
	"github.com/SscSPs/core_banking_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

type PgxScheduledRepository struct {
	BaseRepository
}

var _ portsrepo.ScheduledRepositoryFacade = (*PgxScheduledRepository)(nil)

const scheduledColumns = `
	scheduled_id, reference, transaction_type, account_id, destination_account_id,
	amount, currency_code, payment_reference, description, scheduled_date,
	auto_process, state, processed_at, transaction_id, error_message,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxScheduledRepository) getScheduledRows(ctx context.Context, filterQuery string, args ...any) ([]domain.ScheduledTransaction, error) {
	rows, err := r.db.Query(ctx, `SELECT`+scheduledColumns+` FROM scheduled_transactions `+filterQuery, args...)
	if err != nil {
		return nil, mapError(err, "query scheduled transactions")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ScheduledTransaction])
	if err != nil {
		return nil, mapError(err, "collect scheduled transaction rows")
	}
	out := make([]domain.ScheduledTransaction, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainScheduled(m)
	}
	return out, nil
}

func (r *PgxScheduledRepository) getScheduled(ctx context.Context, scheduledID string, lock bool) (*domain.ScheduledTransaction, error) {
	if !isUUID(scheduledID) {
		return nil, fmt.Errorf("%w: scheduled transaction %s", apperrors.ErrNotFound, scheduledID)
	}
	filter := `WHERE scheduled_id = $1`
	if lock {
		filter += ` FOR UPDATE`
	}
	found, err := r.getScheduledRows(ctx, filter, scheduledID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: scheduled transaction %s", apperrors.ErrNotFound, scheduledID)
	}
	return &found[0], nil
}

func (r *PgxScheduledRepository) FindScheduledByID(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error) {
	return r.getScheduled(ctx, scheduledID, false)
}

func (r *PgxScheduledRepository) FindScheduledByIDForUpdate(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error) {
	return r.getScheduled(ctx, scheduledID, true)
}

func (r *PgxScheduledRepository) FindDueScheduled(ctx context.Context, today time.Time) ([]domain.ScheduledTransaction, error) {
	return r.getScheduledRows(ctx, `
		WHERE state = 'scheduled' AND auto_process AND scheduled_date <= $1
		ORDER BY scheduled_date, scheduled_id`, today)
}

func (r *PgxScheduledRepository) SaveScheduled(ctx context.Context, scheduled domain.ScheduledTransaction) error {
	m := mapping.ToModelScheduled(scheduled)
	_, err := r.db.Exec(ctx, `
		INSERT INTO scheduled_transactions (`+scheduledColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.ScheduledID, m.Reference, m.TransactionType, m.AccountID, m.DestinationAccountID,
		m.Amount, m.CurrencyCode, m.PaymentReference, m.Description, m.ScheduledDate,
		m.AutoProcess, m.State, m.ProcessedAt, m.TransactionID, m.ErrorMessage,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError(err, "save scheduled transaction "+scheduled.ScheduledID)
}

func (r *PgxScheduledRepository) UpdateScheduled(ctx context.Context, scheduled domain.ScheduledTransaction) error {
	m := mapping.ToModelScheduled(scheduled)
	ct, err := r.db.Exec(ctx, `
		UPDATE scheduled_transactions
		SET state = $2, processed_at = $3, transaction_id = $4, error_message = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE scheduled_id = $1`,
		m.ScheduledID, m.State, m.ProcessedAt, m.TransactionID, m.ErrorMessage,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update scheduled transaction "+scheduled.ScheduledID)
	}
	return requireAffected(ct, "scheduled transaction "+scheduled.ScheduledID)
}
