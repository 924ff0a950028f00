package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BatchRowRequest is one unvalidated line. Account may be an account id or
// an account number.
type BatchRowRequest struct {
	Account            string `json:"account"`
	Amount             string `json:"amount"`
	Reference          string `json:"reference"`
	DestinationAccount string `json:"destinationAccount"`
	Description        string `json:"description"`
}

// CreateBatchRequest defines a batch submitted as JSON.
type CreateBatchRequest struct {
	Kind         domain.BatchKind  `json:"kind" binding:"required,oneof=transfer deposit withdrawal payment salary"`
	CurrencyCode string            `json:"currencyCode" binding:"required,len=3"`
	Description  string            `json:"description"`
	Rows         []BatchRowRequest `json:"rows" binding:"required,min=1"`
}

// ToBatchRows numbers the rows starting at 1.
func (r CreateBatchRequest) ToBatchRows() []domain.BatchRow {
	rows := make([]domain.BatchRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = domain.BatchRow{
			RowNumber:          i + 1,
			Account:            row.Account,
			Amount:             row.Amount,
			Reference:          row.Reference,
			DestinationAccount: row.DestinationAccount,
			Description:        row.Description,
		}
	}
	return rows
}

// ImportBatchParams are the form fields sent alongside a CSV upload.
type ImportBatchParams struct {
	Kind         domain.BatchKind `form:"kind" binding:"required,oneof=transfer deposit withdrawal payment salary"`
	CurrencyCode string           `form:"currencyCode" binding:"required,len=3"`
	Description  string           `form:"description"`
}

// BatchLineResponse is the outcome of a single batch line.
type BatchLineResponse struct {
	LineID               string                `json:"lineID"`
	RowNumber            int                   `json:"rowNumber"`
	AccountID            string                `json:"accountID"`
	DestinationAccountID *string               `json:"destinationAccountID,omitempty"`
	Amount               decimal.Decimal       `json:"amount"`
	Reference            string                `json:"reference"`
	State                domain.BatchLineState `json:"state"`
	ErrorMessage         string                `json:"errorMessage,omitempty"`
	TransactionID        *string               `json:"transactionID,omitempty"`
}

// BatchResponse defines the data returned for a batch.
type BatchResponse struct {
	BatchID        string              `json:"batchID"`
	Reference      string              `json:"reference"`
	Kind           domain.BatchKind    `json:"kind"`
	CurrencyCode   string              `json:"currencyCode"`
	Description    string              `json:"description"`
	State          domain.BatchState   `json:"state"`
	TotalLines     int                 `json:"totalLines"`
	TotalAmount    decimal.Decimal     `json:"totalAmount"`
	SuccessCount   int                 `json:"successCount"`
	FailedCount    int                 `json:"failedCount"`
	ProcessedCount int                 `json:"processedCount"`
	ErrorLog       string              `json:"errorLog,omitempty"`
	ProcessedAt    *time.Time          `json:"processedAt,omitempty"`
	Lines          []BatchLineResponse `json:"lines"`
	CreatedAt      time.Time           `json:"createdAt"`
	CreatedBy      string              `json:"createdBy"`
}

// ToBatchResponse converts a domain.Batch and its lines to the DTO.
func ToBatchResponse(b *domain.Batch) BatchResponse {
	lines := make([]BatchLineResponse, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = BatchLineResponse{
			LineID:               l.LineID,
			RowNumber:            l.RowNumber,
			AccountID:            l.AccountID,
			DestinationAccountID: l.DestinationAccountID,
			Amount:               l.Amount,
			Reference:            l.Reference,
			State:                l.State,
			ErrorMessage:         l.ErrorMessage,
			TransactionID:        l.TransactionID,
		}
	}
	return BatchResponse{
		BatchID:        b.BatchID,
		Reference:      b.Reference,
		Kind:           b.Kind,
		CurrencyCode:   b.CurrencyCode,
		Description:    b.Description,
		State:          b.State,
		TotalLines:     b.TotalLines,
		TotalAmount:    b.TotalAmount,
		SuccessCount:   b.SuccessCount,
		FailedCount:    b.FailedCount,
		ProcessedCount: b.ProcessedCount,
		ErrorLog:       b.ErrorLog,
		ProcessedAt:    b.ProcessedAt,
		Lines:          lines,
		CreatedAt:      b.CreatedAt,
		CreatedBy:      b.CreatedBy,
	}
}
