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

type PgxInstructionRepository struct {
	BaseRepository
}

var _ portsrepo.InstructionRepositoryFacade = (*PgxInstructionRepository)(nil)

const instructionColumns = `
	instruction_id, reference, account_id, destination_account_id, beneficiary_name,
	amount, frequency, next_execution_date, end_date, payment_reference, state,
	last_executed_at, last_error, execution_count, created_at, created_by,
	last_updated_at, last_updated_by`

func (r *PgxInstructionRepository) getInstructions(ctx context.Context, filterQuery string, args ...any) ([]domain.RecurringInstruction, error) {
	rows, err := r.db.Query(ctx, `SELECT`+instructionColumns+` FROM recurring_instructions `+filterQuery, args...)
	if err != nil {
		return nil, mapError(err, "query instructions")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.RecurringInstruction])
	if err != nil {
		return nil, mapError(err, "collect instruction rows")
	}
	out := make([]domain.RecurringInstruction, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainInstruction(m)
	}
	return out, nil
}

func (r *PgxInstructionRepository) getInstruction(ctx context.Context, instructionID string, lock bool) (*domain.RecurringInstruction, error) {
	if !isUUID(instructionID) {
		return nil, fmt.Errorf("%w: instruction %s", apperrors.ErrNotFound, instructionID)
	}
	filter := `WHERE instruction_id = $1`
	if lock {
		filter += ` FOR UPDATE`
	}
	found, err := r.getInstructions(ctx, filter, instructionID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: instruction %s", apperrors.ErrNotFound, instructionID)
	}
	return &found[0], nil
}

func (r *PgxInstructionRepository) FindInstructionByID(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error) {
	return r.getInstruction(ctx, instructionID, false)
}

func (r *PgxInstructionRepository) FindInstructionByIDForUpdate(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error) {
	return r.getInstruction(ctx, instructionID, true)
}

func (r *PgxInstructionRepository) FindDueInstructions(ctx context.Context, today time.Time) ([]domain.RecurringInstruction, error) {
	return r.getInstructions(ctx, `
		WHERE state = 'active'
			AND next_execution_date <= $1
			AND (end_date IS NULL OR end_date >= $1)
		ORDER BY next_execution_date, instruction_id`, today)
}

func (r *PgxInstructionRepository) SaveInstruction(ctx context.Context, instruction domain.RecurringInstruction) error {
	m := mapping.ToModelInstruction(instruction)
	_, err := r.db.Exec(ctx, `
		INSERT INTO recurring_instructions (`+instructionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		m.InstructionID, m.Reference, m.AccountID, m.DestinationAccountID, m.BeneficiaryName,
		m.Amount, m.Frequency, m.NextExecutionDate, m.EndDate, m.PaymentReference, m.State,
		m.LastExecutedAt, m.LastError, m.ExecutionCount, m.CreatedAt, m.CreatedBy,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return mapError(err, "save instruction "+instruction.InstructionID)
}

func (r *PgxInstructionRepository) UpdateInstruction(ctx context.Context, instruction domain.RecurringInstruction) error {
	m := mapping.ToModelInstruction(instruction)
	ct, err := r.db.Exec(ctx, `
		UPDATE recurring_instructions
		SET next_execution_date = $2, end_date = $3, state = $4, last_executed_at = $5,
			last_error = $6, execution_count = $7, last_updated_at = $8, last_updated_by = $9
		WHERE instruction_id = $1`,
		m.InstructionID, m.NextExecutionDate, m.EndDate, m.State, m.LastExecutedAt,
		m.LastError, m.ExecutionCount, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(err, "update instruction "+instruction.InstructionID)
	}
	return requireAffected(ct, "instruction "+instruction.InstructionID)
}
