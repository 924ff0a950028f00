package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledTransaction is a row of the scheduled_transactions table.
type ScheduledTransaction struct {
	ScheduledID          string          `db:"scheduled_id"`
	Reference            string          `db:"reference"`
	TransactionType      string          `db:"transaction_type"`
	AccountID            string          `db:"account_id"`
	DestinationAccountID *string         `db:"destination_account_id"`
	Amount               decimal.Decimal `db:"amount"`
	CurrencyCode         string          `db:"currency_code"`
	PaymentReference     string          `db:"payment_reference"`
	Description          string          `db:"description"`
	ScheduledDate        time.Time       `db:"scheduled_date"`
	AutoProcess          bool            `db:"auto_process"`
	State                string          `db:"state"`
	ProcessedAt          *time.Time      `db:"processed_at"`
	TransactionID        *string         `db:"transaction_id"`
	ErrorMessage         string          `db:"error_message"`
	AuditFields
}
