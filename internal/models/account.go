package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountState mirrors the account_state column.
type AccountState string

// Account is a row of the accounts table.
type Account struct {
	AccountID         string          `db:"account_id"`
	AccountNumber     string          `db:"account_number"`
	Name              string          `db:"name"`
	CustomerRef       string          `db:"customer_ref"`
	CurrencyCode      string          `db:"currency_code"`
	Balance           decimal.Decimal `db:"balance"`
	HoldAmount        decimal.Decimal `db:"hold_amount"`
	OverdraftAllowed  bool            `db:"overdraft_allowed"`
	OverdraftLimit    decimal.Decimal `db:"overdraft_limit"`
	State             AccountState    `db:"state"`
	LastTransactionAt *time.Time      `db:"last_transaction_at"` // Nullable
	ActivatedAt       *time.Time      `db:"activated_at"`        // Nullable
	ClosedAt          *time.Time      `db:"closed_at"`           // Nullable
	AuditFields
}
