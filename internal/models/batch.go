package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch is a row of the batches table.
type Batch struct {
	BatchID        string          `db:"batch_id"`
	Reference      string          `db:"reference"`
	Kind           string          `db:"kind"`
	CurrencyCode   string          `db:"currency_code"`
	Description    string          `db:"description"`
	State          string          `db:"state"`
	TotalLines     int             `db:"total_lines"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	SuccessCount   int             `db:"success_count"`
	FailedCount    int             `db:"failed_count"`
	ProcessedCount int             `db:"processed_count"`
	ErrorLog       string          `db:"error_log"`
	ProcessedBy    *string         `db:"processed_by"`
	ProcessedAt    *time.Time      `db:"processed_at"`
	AuditFields
}

// BatchLine is a row of the batch_lines table.
type BatchLine struct {
	LineID               string          `db:"line_id"`
	BatchID              string          `db:"batch_id"`
	RowNumber            int             `db:"row_number"`
	AccountID            string          `db:"account_id"`
	DestinationAccountID *string         `db:"destination_account_id"`
	Amount               decimal.Decimal `db:"amount"`
	Reference            string          `db:"reference"`
	Description          string          `db:"description"`
	State                string          `db:"state"`
	ErrorMessage         string          `db:"error_message"`
	TransactionID        *string         `db:"transaction_id"`
}
