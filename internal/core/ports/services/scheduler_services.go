package services

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
)

// SchedulerSvcFacade defines standing order and scheduled transaction operations
type SchedulerSvcFacade interface {
	CreateInstruction(ctx context.Context, req dto.CreateInstructionRequest, actor string) (*domain.RecurringInstruction, error)
	GetInstruction(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error)
	ActivateInstruction(ctx context.Context, instructionID string, actor string) (*domain.RecurringInstruction, error)
	CancelInstruction(ctx context.Context, instructionID string, actor string) (*domain.RecurringInstruction, error)

	FindDueInstructions(ctx context.Context, today time.Time) ([]domain.RecurringInstruction, error)

	// RunDue executes every standing order and auto-processed scheduled
	// transaction due on today, each in its own unit of work, and reports
	// per-item failures in the result.
	RunDue(ctx context.Context, today time.Time) (*domain.SchedulerRunResult, error)

	CreateScheduledTransaction(ctx context.Context, req dto.CreateScheduledTransactionRequest, actor string) (*domain.ScheduledTransaction, error)
	GetScheduledTransaction(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error)
	CancelScheduledTransaction(ctx context.Context, scheduledID string, actor string) (*domain.ScheduledTransaction, error)

	// ExecuteScheduledTransaction posts a scheduled entry now, regardless of
	// its date. A posting failure marks it failed and is returned.
	ExecuteScheduledTransaction(ctx context.Context, scheduledID string, actor string) (*domain.ScheduledTransaction, error)
}
