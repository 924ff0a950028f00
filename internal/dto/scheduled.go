package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateScheduledTransactionRequest defines a one-shot future posting.
// AutoProcess defaults to true when omitted.
type CreateScheduledTransactionRequest struct {
	TransactionType      domain.TransactionType `json:"transactionType" binding:"required,oneof=deposit withdrawal transfer payment"`
	AccountID            string                 `json:"accountID" binding:"required"`
	DestinationAccountID *string                `json:"destinationAccountID"`
	Amount               decimal.Decimal        `json:"amount"`
	CurrencyCode         string                 `json:"currencyCode"`
	PaymentReference     string                 `json:"paymentReference"`
	Description          string                 `json:"description"`
	ScheduledDate        time.Time              `json:"scheduledDate" binding:"required"`
	AutoProcess          *bool                  `json:"autoProcess"`
}

// ScheduledTransactionResponse defines the data returned for a scheduled transaction.
type ScheduledTransactionResponse struct {
	ScheduledID          string                 `json:"scheduledID"`
	Reference            string                 `json:"reference"`
	TransactionType      domain.TransactionType `json:"transactionType"`
	AccountID            string                 `json:"accountID"`
	DestinationAccountID *string                `json:"destinationAccountID,omitempty"`
	Amount               decimal.Decimal        `json:"amount"`
	CurrencyCode         string                 `json:"currencyCode"`
	PaymentReference     string                 `json:"paymentReference"`
	Description          string                 `json:"description"`
	ScheduledDate        time.Time              `json:"scheduledDate"`
	AutoProcess          bool                   `json:"autoProcess"`
	State                domain.ScheduledState  `json:"state"`
	ProcessedAt          *time.Time             `json:"processedAt,omitempty"`
	TransactionID        *string                `json:"transactionID,omitempty"`
	ErrorMessage         string                 `json:"errorMessage,omitempty"`
}

func ToScheduledTransactionResponse(s *domain.ScheduledTransaction) ScheduledTransactionResponse {
	return ScheduledTransactionResponse{
		ScheduledID:          s.ScheduledID,
		Reference:            s.Reference,
		TransactionType:      s.TransactionType,
		AccountID:            s.AccountID,
		DestinationAccountID: s.DestinationAccountID,
		Amount:               s.Amount,
		CurrencyCode:         s.CurrencyCode,
		PaymentReference:     s.PaymentReference,
		Description:          s.Description,
		ScheduledDate:        s.ScheduledDate,
		AutoProcess:          s.AutoProcess,
		State:                s.State,
		ProcessedAt:          s.ProcessedAt,
		TransactionID:        s.TransactionID,
		ErrorMessage:         s.ErrorMessage,
	}
}
