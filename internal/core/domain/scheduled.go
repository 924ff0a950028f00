package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledState is the lifecycle state of a one-shot scheduled transaction.
type ScheduledState string

const (
	ScheduledPending   ScheduledState = "scheduled"
	ScheduledProcessed ScheduledState = "processed"
	ScheduledFailed    ScheduledState = "failed"
	ScheduledCancelled ScheduledState = "cancelled"
)

// ScheduledTransaction is a single future-dated posting. Unlike a standing
// order it executes at most once and ends processed or failed.
type ScheduledTransaction struct {
	ScheduledID          string          `json:"scheduledID"`
	Reference            string          `json:"reference"`
	TransactionType      TransactionType `json:"transactionType"`
	AccountID            string          `json:"accountID"`
	DestinationAccountID *string         `json:"destinationAccountID,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
	PaymentReference     string          `json:"paymentReference"`
	Description          string          `json:"description"`
	ScheduledDate        time.Time       `json:"scheduledDate"`
	AutoProcess          bool            `json:"autoProcess"`
	State                ScheduledState  `json:"state"`
	ProcessedAt          *time.Time      `json:"processedAt,omitempty"`
	TransactionID        *string         `json:"transactionID,omitempty"`
	ErrorMessage         string          `json:"errorMessage,omitempty"`
	AuditFields
}

// IsSchedulableType reports whether t may be scheduled for later.
func IsSchedulableType(t TransactionType) bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTransfer, TxPayment:
		return true
	}
	return false
}

// IsDue reports whether the scheduler should pick the transaction up on today.
// Entries with AutoProcess off only run on request.
func (s ScheduledTransaction) IsDue(today time.Time) bool {
	return s.State == ScheduledPending && s.AutoProcess && !s.ScheduledDate.After(today)
}
