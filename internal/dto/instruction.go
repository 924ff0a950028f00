package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateInstructionRequest defines a new standing order.
type CreateInstructionRequest struct {
	AccountID            string           `json:"accountID" binding:"required"`
	DestinationAccountID *string          `json:"destinationAccountID"`
	BeneficiaryName      string           `json:"beneficiaryName" binding:"required"`
	Amount               decimal.Decimal  `json:"amount"`
	Frequency            domain.Frequency `json:"frequency" binding:"required,oneof=daily weekly monthly quarterly yearly"`
	StartDate            time.Time        `json:"startDate" binding:"required"`
	EndDate              *time.Time       `json:"endDate"`
	PaymentReference     string           `json:"paymentReference"`
	Activate             bool             `json:"activate"`
}

// InstructionResponse defines the data returned for a standing order.
type InstructionResponse struct {
	InstructionID        string                  `json:"instructionID"`
	Reference            string                  `json:"reference"`
	AccountID            string                  `json:"accountID"`
	DestinationAccountID *string                 `json:"destinationAccountID,omitempty"`
	BeneficiaryName      string                  `json:"beneficiaryName"`
	Amount               decimal.Decimal         `json:"amount"`
	Frequency            domain.Frequency        `json:"frequency"`
	NextExecutionDate    time.Time               `json:"nextExecutionDate"`
	EndDate              *time.Time              `json:"endDate,omitempty"`
	PaymentReference     string                  `json:"paymentReference"`
	State                domain.InstructionState `json:"state"`
	LastExecutedAt       *time.Time              `json:"lastExecutedAt,omitempty"`
	LastError            string                  `json:"lastError,omitempty"`
	ExecutionCount       int                     `json:"executionCount"`
}

// ToInstructionResponse converts a domain.RecurringInstruction to its DTO.
func ToInstructionResponse(r *domain.RecurringInstruction) InstructionResponse {
	return InstructionResponse{
		InstructionID:        r.InstructionID,
		Reference:            r.Reference,
		AccountID:            r.AccountID,
		DestinationAccountID: r.DestinationAccountID,
		BeneficiaryName:      r.BeneficiaryName,
		Amount:               r.Amount,
		Frequency:            r.Frequency,
		NextExecutionDate:    r.NextExecutionDate,
		EndDate:              r.EndDate,
		PaymentReference:     r.PaymentReference,
		State:                r.State,
		LastExecutedAt:       r.LastExecutedAt,
		LastError:            r.LastError,
		ExecutionCount:       r.ExecutionCount,
	}
}

// SchedulerRunRequest optionally overrides the business date of a manual run.
type SchedulerRunRequest struct {
	RunDate *time.Time `json:"runDate"`
}
