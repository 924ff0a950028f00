package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
)

type instructionRepo struct{ *view }

var _ portsrepo.InstructionRepositoryFacade = (*instructionRepo)(nil)

func (r *instructionRepo) FindInstructionByID(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error) {
	var (
		ins domain.RecurringInstruction
		ok  bool
	)
	r.read(func(c, st *dataset) { ins, ok = lookup(c.instructions, st.instructions, instructionID) })
	if !ok {
		return nil, fmt.Errorf("%w: instruction %s", apperrors.ErrNotFound, instructionID)
	}
	return &ins, nil
}

func (r *instructionRepo) FindInstructionByIDForUpdate(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error) {
	if err := r.lock(ctx, "instruction", instructionID); err != nil {
		return nil, err
	}
	return r.FindInstructionByID(ctx, instructionID)
}

func (r *instructionRepo) FindDueInstructions(ctx context.Context, today time.Time) ([]domain.RecurringInstruction, error) {
	var due []domain.RecurringInstruction
	r.read(func(c, st *dataset) {
		for _, ins := range merged(c.instructions, st.instructions) {
			if ins.IsDue(today) {
				due = append(due, ins)
			}
		}
	})
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextExecutionDate.Equal(due[j].NextExecutionDate) {
			return due[i].NextExecutionDate.Before(due[j].NextExecutionDate)
		}
		return due[i].InstructionID < due[j].InstructionID
	})
	return due, nil
}

func (r *instructionRepo) SaveInstruction(ctx context.Context, instruction domain.RecurringInstruction) error {
	return r.write(func(c, st *dataset) error {
		if _, exists := lookup(c.instructions, st.instructions, instruction.InstructionID); exists {
			return fmt.Errorf("%w: instruction %s", apperrors.ErrDuplicate, instruction.InstructionID)
		}
		st.instructions[instruction.InstructionID] = instruction
		return nil
	})
}

func (r *instructionRepo) UpdateInstruction(ctx context.Context, instruction domain.RecurringInstruction) error {
	return r.write(func(c, st *dataset) error {
		if _, ok := lookup(c.instructions, st.instructions, instruction.InstructionID); !ok {
			return fmt.Errorf("%w: instruction %s", apperrors.ErrNotFound, instruction.InstructionID)
		}
		st.instructions[instruction.InstructionID] = instruction
		return nil
	})
}
