package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a monetary movement.
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxTransfer   TransactionType = "transfer"
	TxFee        TransactionType = "fee"
	TxInterest   TransactionType = "interest"
	TxPayment    TransactionType = "payment"
	TxRefund     TransactionType = "refund"
	TxReversal   TransactionType = "reversal"
	TxAdjustment TransactionType = "adjustment"
	TxOther      TransactionType = "other"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxTransfer, TxFee, TxInterest, TxPayment,
		TxRefund, TxReversal, TxAdjustment, TxOther:
		return true
	}
	return false
}

// IsOutflow reports whether money leaves the source account for this type.
func (t TransactionType) IsOutflow() bool {
	switch t {
	case TxWithdrawal, TxTransfer, TxPayment, TxFee:
		return true
	}
	return false
}

// AllowsDestination reports whether the type may carry a counterparty account.
func (t TransactionType) AllowsDestination() bool {
	return t == TxTransfer || t == TxPayment
}

// TransactionState is the posting state of a transaction.
type TransactionState string

const (
	TxStateDraft      TransactionState = "draft"
	TxStatePending    TransactionState = "pending"
	TxStatePosted     TransactionState = "posted"
	TxStateReconciled TransactionState = "reconciled"
	TxStateReversed   TransactionState = "reversed"
	TxStateCancelled  TransactionState = "cancelled"
)

// IsOpen reports whether the transaction has not been posted or cancelled yet.
func (s TransactionState) IsOpen() bool {
	return s == TxStateDraft || s == TxStatePending
}

// Channel identifies the digital channel a transaction arrived through.
type Channel string

const (
	ChannelMobileApp  Channel = "mobile_app"
	ChannelWebBanking Channel = "web_banking"
	ChannelAPI        Channel = "api"
	ChannelUSSD       Channel = "ussd"
	ChannelSMS        Channel = "sms"
)

// ChannelMetadata is optional context attached to transactions that came
// through a digital channel.
type ChannelMetadata struct {
	Channel           Channel `json:"channel"`
	DeviceID          string  `json:"deviceID,omitempty"`
	SessionRef        string  `json:"sessionRef,omitempty"`
	APIKeyRef         string  `json:"apiKeyRef,omitempty"`
	OTPVerified       bool    `json:"otpVerified"`
	BiometricVerified bool    `json:"biometricVerified"`
}

// Transaction is a single movement against an account, optionally with a
// counterparty account. Amount is signed from the source account's point of
// view: negative for money leaving it.
type Transaction struct {
	TransactionID        string           `json:"transactionID"`
	Reference            string           `json:"reference"`
	TransactionType      TransactionType  `json:"transactionType"`
	AccountID            string           `json:"accountID"`
	DestinationAccountID *string          `json:"destinationAccountID,omitempty"`
	Amount               decimal.Decimal  `json:"amount"`
	CurrencyCode         string           `json:"currencyCode"`
	ExchangeRate         decimal.Decimal  `json:"exchangeRate"`
	State                TransactionState `json:"state"`
	// ReversedEntryID is set on a reversal and points at the original.
	ReversedEntryID *string `json:"reversedEntryID,omitempty"`
	// ReversalID is set on an original once it has been reversed.
	ReversalID      *string          `json:"reversalID,omitempty"`
	TransactionDate time.Time        `json:"transactionDate"`
	ValueDate       time.Time        `json:"valueDate"`
	Description     string           `json:"description"`
	PostedBy        string           `json:"postedBy,omitempty"`
	PostedAt        *time.Time       `json:"postedAt,omitempty"`
	ReconciledBy    string           `json:"reconciledBy,omitempty"`
	ReconciledAt    *time.Time       `json:"reconciledAt,omitempty"`
	Channel         *ChannelMetadata `json:"channel,omitempty"`
	AuditFields
}

// AmountInCurrency is the amount converted with the stored exchange rate.
func (t Transaction) AmountInCurrency() decimal.Decimal {
	rate := t.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	return t.Amount.Mul(rate)
}

// BalanceEffects returns the signed change for every account touched when
// the transaction is posted. The destination always moves opposite to the
// source, which keeps reversals of transfers symmetrical.
func (t Transaction) BalanceEffects() map[string]decimal.Decimal {
	effects := map[string]decimal.Decimal{t.AccountID: t.Amount}
	if t.DestinationAccountID != nil && *t.DestinationAccountID != "" {
		effects[*t.DestinationAccountID] = t.Amount.Neg()
	}
	return effects
}

// AccountIDs lists the accounts the transaction touches.
func (t Transaction) AccountIDs() []string {
	ids := []string{t.AccountID}
	if t.DestinationAccountID != nil && *t.DestinationAccountID != "" {
		ids = append(ids, *t.DestinationAccountID)
	}
	return ids
}

// IsReversal reports whether this transaction reverses another one.
func (t Transaction) IsReversal() bool {
	return t.ReversedEntryID != nil
}
