package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringInstruction is a row of the recurring_instructions table.
type RecurringInstruction struct {
	InstructionID        string          `db:"instruction_id"`
	Reference            string          `db:"reference"`
	AccountID            string          `db:"account_id"`
	DestinationAccountID *string         `db:"destination_account_id"`
	BeneficiaryName      string          `db:"beneficiary_name"`
	Amount               decimal.Decimal `db:"amount"`
	Frequency            string          `db:"frequency"`
	NextExecutionDate    time.Time       `db:"next_execution_date"`
	EndDate              *time.Time      `db:"end_date"`
	PaymentReference     string          `db:"payment_reference"`
	State                string          `db:"state"`
	LastExecutedAt       *time.Time      `db:"last_executed_at"`
	LastError            string          `db:"last_error"`
	ExecutionCount       int             `db:"execution_count"`
	AuditFields
}
