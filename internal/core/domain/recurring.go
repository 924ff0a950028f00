package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring instruction executes.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// InstructionState is the lifecycle state of a standing order.
type InstructionState string

const (
	InstructionDraft     InstructionState = "draft"
	InstructionActive    InstructionState = "active"
	InstructionExpired   InstructionState = "expired"
	InstructionCancelled InstructionState = "cancelled"
)

// RecurringInstruction is a standing order that moves a fixed amount out of
// an account on a calendar schedule.
type RecurringInstruction struct {
	InstructionID        string           `json:"instructionID"`
	Reference            string           `json:"reference"`
	AccountID            string           `json:"accountID"`
	DestinationAccountID *string          `json:"destinationAccountID,omitempty"`
	BeneficiaryName      string           `json:"beneficiaryName"`
	Amount               decimal.Decimal  `json:"amount"`
	Frequency            Frequency        `json:"frequency"`
	NextExecutionDate    time.Time        `json:"nextExecutionDate"`
	EndDate              *time.Time       `json:"endDate,omitempty"`
	PaymentReference     string           `json:"paymentReference"`
	State                InstructionState `json:"state"`
	LastExecutedAt       *time.Time       `json:"lastExecutedAt,omitempty"`
	LastError            string           `json:"lastError,omitempty"`
	ExecutionCount       int              `json:"executionCount"`
	AuditFields
}

// IsDue reports whether the instruction should execute on today.
func (r RecurringInstruction) IsDue(today time.Time) bool {
	if r.State != InstructionActive {
		return false
	}
	if r.NextExecutionDate.After(today) {
		return false
	}
	return r.EndDate == nil || !r.EndDate.Before(today)
}

// TransactionType is transfer when a destination account is set, otherwise
// a withdrawal to an external beneficiary.
func (r RecurringInstruction) TransactionType() TransactionType {
	if r.DestinationAccountID != nil && *r.DestinationAccountID != "" {
		return TxTransfer
	}
	return TxWithdrawal
}

// SchedulerRunResult summarises one RunDue pass. Executed, Rearmed,
// Expired and Failed count standing orders; the Scheduled fields count
// one-shot scheduled transactions.
type SchedulerRunResult struct {
	RunDate           time.Time          `json:"runDate"`
	Executed          int                `json:"executed"`
	Rearmed           int                `json:"rearmed"`
	Expired           int                `json:"expired"`
	Failed            int                `json:"failed"`
	ScheduledExecuted int                `json:"scheduledExecuted"`
	ScheduledFailed   int                `json:"scheduledFailed"`
	Errors            []InstructionError `json:"errors,omitempty"`
}

// InstructionError records why a single standing order or scheduled
// transaction failed to execute. InstructionID holds the scheduled ID for
// the latter.
type InstructionError struct {
	InstructionID string `json:"instructionID"`
	Reference     string `json:"reference"`
	Error         string `json:"error"`
}
