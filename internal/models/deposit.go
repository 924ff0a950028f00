package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FixedDeposit is a row of the fixed_deposits table.
type FixedDeposit struct {
	DepositID                  string          `db:"deposit_id"`
	Reference                  string          `db:"reference"`
	CustomerRef                string          `db:"customer_ref"`
	AccountID                  string          `db:"account_id"`
	PrincipalAmount            decimal.Decimal `db:"principal_amount"`
	CurrencyCode               string          `db:"currency_code"`
	InterestRate               decimal.Decimal `db:"interest_rate"`
	TermMonths                 int             `db:"term_months"`
	Compounding                string          `db:"compounding"`
	DepositDate                time.Time       `db:"deposit_date"`
	MaturityDate               time.Time       `db:"maturity_date"`
	MaturityAmount             decimal.Decimal `db:"maturity_amount"`
	AllowEarlyWithdrawal       bool            `db:"allow_early_withdrawal"`
	EarlyWithdrawalPenaltyRate decimal.Decimal `db:"early_withdrawal_penalty_rate"`
	State                      string          `db:"state"`
	RenewedFromID              *string         `db:"renewed_from_id"`
	ClosedAt                   *time.Time      `db:"closed_at"`
	PayoutTransactionID        *string         `db:"payout_transaction_id"`
	AuditFields
}
