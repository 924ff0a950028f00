package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. Amount is signed from the
// source account's point of view.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"`
	Reference            string          `db:"reference"`
	TransactionType      string          `db:"transaction_type"`
	AccountID            string          `db:"account_id"`
	DestinationAccountID *string         `db:"destination_account_id"` // Nullable
	Amount               decimal.Decimal `db:"amount"`
	CurrencyCode         string          `db:"currency_code"`
	ExchangeRate         decimal.Decimal `db:"exchange_rate"`
	State                string          `db:"state"`
	ReversedEntryID      *string         `db:"reversed_entry_id"`
	ReversalID           *string         `db:"reversal_id"`
	TransactionDate      time.Time       `db:"transaction_date"`
	ValueDate            time.Time       `db:"value_date"`
	Description          string          `db:"description"`
	PostedBy             *string         `db:"posted_by"`
	PostedAt             *time.Time      `db:"posted_at"`
	ReconciledBy         *string         `db:"reconciled_by"`
	ReconciledAt         *time.Time      `db:"reconciled_at"`
	Channel              []byte          `db:"channel"` // JSONB, nullable
	AuditFields
}
