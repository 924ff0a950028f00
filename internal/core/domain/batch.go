package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchKind selects what each line of a batch does.
type BatchKind string

const (
	BatchTransfer   BatchKind = "transfer"
	BatchDeposit    BatchKind = "deposit"
	BatchWithdrawal BatchKind = "withdrawal"
	BatchPayment    BatchKind = "payment"
	BatchSalary     BatchKind = "salary"
)

// IsValid reports whether k is a known batch kind.
func (k BatchKind) IsValid() bool {
	switch k {
	case BatchTransfer, BatchDeposit, BatchWithdrawal, BatchPayment, BatchSalary:
		return true
	}
	return false
}

// RequiresDestination reports whether each line needs a counterparty account.
func (k BatchKind) RequiresDestination() bool {
	return k == BatchTransfer
}

// TransactionType is the transaction type created for each line.
// Salary lines credit the employee account.
func (k BatchKind) TransactionType() TransactionType {
	switch k {
	case BatchTransfer:
		return TxTransfer
	case BatchWithdrawal:
		return TxWithdrawal
	case BatchPayment:
		return TxPayment
	default:
		return TxDeposit
	}
}

// BatchState is the processing state of a batch.
type BatchState string

const (
	BatchDraft      BatchState = "draft"
	BatchValidated  BatchState = "validated"
	BatchProcessing BatchState = "processing"
	BatchCompleted  BatchState = "completed"
	BatchFailed     BatchState = "failed"
	BatchCancelled  BatchState = "cancelled"
)

// BatchLineState is the processing state of a single line.
type BatchLineState string

const (
	LinePending   BatchLineState = "pending"
	LineProcessed BatchLineState = "processed"
	LineFailed    BatchLineState = "failed"
)

// Batch groups many movements that are processed line by line.
type Batch struct {
	BatchID        string          `json:"batchID"`
	Reference      string          `json:"reference"`
	Kind           BatchKind       `json:"kind"`
	CurrencyCode   string          `json:"currencyCode"`
	Description    string          `json:"description"`
	State          BatchState      `json:"state"`
	TotalLines     int             `json:"totalLines"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	SuccessCount   int             `json:"successCount"`
	FailedCount    int             `json:"failedCount"`
	ProcessedCount int             `json:"processedCount"`
	ErrorLog       string          `json:"errorLog,omitempty"`
	ProcessedBy    string          `json:"processedBy,omitempty"`
	ProcessedAt    *time.Time      `json:"processedAt,omitempty"`
	Lines          []BatchLine     `json:"lines,omitempty"`
	AuditFields
}

// BatchLine is one validated movement inside a batch. Amount is a positive
// magnitude; the engine applies the sign.
type BatchLine struct {
	LineID               string          `json:"lineID"`
	BatchID              string          `json:"batchID"`
	RowNumber            int             `json:"rowNumber"`
	AccountID            string          `json:"accountID"`
	DestinationAccountID *string         `json:"destinationAccountID,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Reference            string          `json:"reference"`
	Description          string          `json:"description"`
	State                BatchLineState  `json:"state"`
	ErrorMessage         string          `json:"errorMessage,omitempty"`
	TransactionID        *string         `json:"transactionID,omitempty"`
}

// BatchRow is an unvalidated input row, as read from a request or a CSV
// file. The csv tags are the column names of the import format.
type BatchRow struct {
	RowNumber          int    `csv:"-"`
	Account            string `csv:"account_number" validate:"required"`
	Amount             string `csv:"amount" validate:"required"`
	Reference          string `csv:"reference" validate:"required"`
	DestinationAccount string `csv:"destination_account"`
	Description        string `csv:"description"`
}
