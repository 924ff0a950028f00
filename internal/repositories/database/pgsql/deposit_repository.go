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

type PgxDepositRepository struct {
	BaseRepository
}

var _ portsrepo.DepositRepositoryFacade = (*PgxDepositRepository)(nil)

const depositColumns = `
	deposit_id, reference, customer_ref, account_id, principal_amount, currency_code,
	interest_rate, term_months, compounding, deposit_date, maturity_date, maturity_amount,
	allow_early_withdrawal, early_withdrawal_penalty_rate, state, renewed_from_id,
	closed_at, payout_transaction_id, created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxDepositRepository) getDeposits(ctx context.Context, filterQuery string, args ...any) ([]domain.FixedDeposit, error) {
	rows, err := r.db.Query(ctx, `SELECT`+depositColumns+` FROM fixed_deposits `+filterQuery, args...)
	if err != nil {
		return nil, mapError(err, "query deposits")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.FixedDeposit])
	if err != nil {
		return nil, mapError(err, "collect deposit rows")
	}
	out := make([]domain.FixedDeposit, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainDeposit(m)
	}
	return out, nil
}

func (r *PgxDepositRepository) getDeposit(ctx context.Context, depositID string, lock bool) (*domain.FixedDeposit, error) {
	if !isUUID(depositID) {
		return nil, fmt.Errorf("%w: deposit %s", apperrors.ErrNotFound, depositID)
	}
	filter := `WHERE deposit_id = $1`
	if lock {
		filter += ` FOR UPDATE`
	}
	found, err := r.getDeposits(ctx, filter, depositID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: deposit %s", apperrors.ErrNotFound, depositID)
	}
	return &found[0], nil
}

func (r *PgxDepositRepository) FindDepositByID(ctx context.Context, depositID string) (*domain.FixedDeposit, error) {
	return r.getDeposit(ctx, depositID, false)
}

func (r *PgxDepositRepository) FindDepositByIDForUpdate(ctx context.Context, depositID string) (*domain.FixedDeposit, error) {
	return r.getDeposit(ctx, depositID, true)
}

func (r *PgxDepositRepository) FindMaturedDeposits(ctx context.Context, today time.Time) ([]domain.FixedDeposit, error) {
	return r.getDeposits(ctx, `WHERE state = 'active' AND maturity_date <= $1 ORDER BY maturity_date, deposit_id`, today)
}

func (r *PgxDepositRepository) SaveDeposit(ctx context.Context, deposit domain.FixedDeposit) error {
	m := mapping.ToModelDeposit(deposit)
	_, err := r.db.Exec(ctx, `
		INSERT INTO fixed_deposits (`+depositColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		m.DepositID, m.Reference, m.CustomerRef, m.AccountID, m.PrincipalAmount, m.CurrencyCode,
		m.InterestRate, m.TermMonths, m.Compounding, m.DepositDate, m.MaturityDate, m.MaturityAmount,
		m.AllowEarlyWithdrawal, m.EarlyWithdrawalPenaltyRate, m.State, m.RenewedFromID,
		m.ClosedAt, m.PayoutTransactionID, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError(err, "save deposit "+deposit.DepositID)
}

func (r *PgxDepositRepository) UpdateDeposit(ctx context.Context, deposit domain.FixedDeposit) error {
	m := mapping.ToModelDeposit(deposit)
	ct, err := r.db.Exec(ctx, `
		UPDATE fixed_deposits
		SET state = $2, closed_at = $3, payout_transaction_id = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE deposit_id = $1`,
		m.DepositID, m.State, m.ClosedAt, m.PayoutTransactionID, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update deposit "+deposit.DepositID)
	}
	return requireAffected(ct, "deposit "+deposit.DepositID)
}
