package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ChannelRequest carries digital channel context for a transaction.
type ChannelRequest struct {
	Channel           domain.Channel `json:"channel" binding:"required,oneof=mobile_app web_banking api ussd sms"`
	DeviceID          string         `json:"deviceID"`
	SessionRef        string         `json:"sessionRef"`
	APIKeyRef         string         `json:"apiKeyRef"`
	OTPVerified       bool           `json:"otpVerified"`
	BiometricVerified bool           `json:"biometricVerified"`
}

// ToChannelMetadata converts the request into domain metadata. nil stays nil.
func (c *ChannelRequest) ToChannelMetadata() *domain.ChannelMetadata {
	if c == nil {
		return nil
	}
	return &domain.ChannelMetadata{
		Channel:           c.Channel,
		DeviceID:          c.DeviceID,
		SessionRef:        c.SessionRef,
		APIKeyRef:         c.APIKeyRef,
		OTPVerified:       c.OTPVerified,
		BiometricVerified: c.BiometricVerified,
	}
}

// CreateTransactionRequest defines a new ledger transaction. Amount is a
// positive magnitude; the engine signs it from TransactionType.
type CreateTransactionRequest struct {
	TransactionType      domain.TransactionType `json:"transactionType" binding:"required,oneof=deposit withdrawal transfer fee interest payment refund adjustment other"`
	AccountID            string                 `json:"accountID" binding:"required"`
	DestinationAccountID *string                `json:"destinationAccountID"`
	Amount               decimal.Decimal        `json:"amount"`
	CurrencyCode         string                 `json:"currencyCode"`
	ExchangeRate         *decimal.Decimal       `json:"exchangeRate"`
	Reference            string                 `json:"reference"`
	Description          string                 `json:"description"`
	TransactionDate      *time.Time             `json:"transactionDate"`
	ValueDate            *time.Time             `json:"valueDate"`
	Pending              bool                   `json:"pending"` // Create in pending instead of draft
	Channel              *ChannelRequest        `json:"channel"`
}

// ReconcileRequest lists posted transactions to mark reconciled.
type ReconcileRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID        string                  `json:"transactionID"`
	Reference            string                  `json:"reference"`
	TransactionType      domain.TransactionType  `json:"transactionType"`
	AccountID            string                  `json:"accountID"`
	DestinationAccountID *string                 `json:"destinationAccountID,omitempty"`
	Amount               decimal.Decimal         `json:"amount"`
	CurrencyCode         string                  `json:"currencyCode"`
	ExchangeRate         decimal.Decimal         `json:"exchangeRate"`
	AmountInCurrency     decimal.Decimal         `json:"amountInCurrency"`
	State                domain.TransactionState `json:"state"`
	ReversedEntryID      *string                 `json:"reversedEntryID,omitempty"`
	ReversalID           *string                 `json:"reversalID,omitempty"`
	TransactionDate      time.Time               `json:"transactionDate"`
	ValueDate            time.Time               `json:"valueDate"`
	Description          string                  `json:"description"`
	PostedBy             string                  `json:"postedBy,omitempty"`
	PostedAt             *time.Time              `json:"postedAt,omitempty"`
	ReconciledAt         *time.Time              `json:"reconciledAt,omitempty"`
	Channel              *domain.ChannelMetadata `json:"channel,omitempty"`
	CreatedAt            time.Time               `json:"createdAt"`
	CreatedBy            string                  `json:"createdBy"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        txn.TransactionID,
		Reference:            txn.Reference,
		TransactionType:      txn.TransactionType,
		AccountID:            txn.AccountID,
		DestinationAccountID: txn.DestinationAccountID,
		Amount:               txn.Amount,
		CurrencyCode:         txn.CurrencyCode,
		ExchangeRate:         txn.ExchangeRate,
		AmountInCurrency:     txn.AmountInCurrency(),
		State:                txn.State,
		ReversedEntryID:      txn.ReversedEntryID,
		ReversalID:           txn.ReversalID,
		TransactionDate:      txn.TransactionDate,
		ValueDate:            txn.ValueDate,
		Description:          txn.Description,
		PostedBy:             txn.PostedBy,
		PostedAt:             txn.PostedAt,
		ReconciledAt:         txn.ReconciledAt,
		Channel:              txn.Channel,
		CreatedAt:            txn.CreatedAt,
		CreatedBy:            txn.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for listing an account's transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
