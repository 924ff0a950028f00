package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// InstructionReader defines read operations for standing orders
type InstructionReader interface {
	FindInstructionByID(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error)

	// FindDueInstructions returns active instructions with next date on or
	// before today and no end date earlier than today, oldest first.
	FindDueInstructions(ctx context.Context, today time.Time) ([]domain.RecurringInstruction, error)
}

// InstructionWriter defines write operations for standing orders
type InstructionWriter interface {
	SaveInstruction(ctx context.Context, instruction domain.RecurringInstruction) error
	UpdateInstruction(ctx context.Context, instruction domain.RecurringInstruction) error
}

// InstructionLocker locks an instruction row.
type InstructionLocker interface {
	FindInstructionByIDForUpdate(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error)
}

// InstructionRepositoryFacade combines all instruction repository interfaces
type InstructionRepositoryFacade interface {
	InstructionReader
	InstructionWriter
	InstructionLocker
}
