package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Compounding selects how deposit interest is calculated.
type Compounding string

const (
	CompoundingSimple    Compounding = "simple"
	CompoundingMonthly   Compounding = "monthly"
	CompoundingQuarterly Compounding = "quarterly"
	CompoundingAnnual    Compounding = "annual"
)

// PeriodsPerYear returns the compounding periods per year, or 0 for simple interest.
func (c Compounding) PeriodsPerYear() int {
	switch c {
	case CompoundingMonthly:
		return 12
	case CompoundingQuarterly:
		return 4
	case CompoundingAnnual:
		return 1
	}
	return 0
}

// IsValid reports whether c is a known compounding mode.
func (c Compounding) IsValid() bool {
	return c == CompoundingSimple || c.PeriodsPerYear() > 0
}

// DepositState is the lifecycle state of a fixed deposit.
type DepositState string

const (
	DepositDraft     DepositState = "draft"
	DepositActive    DepositState = "active"
	DepositMatured   DepositState = "matured"
	DepositWithdrawn DepositState = "withdrawn"
	DepositRenewed   DepositState = "renewed"
)

// FixedDeposit is a term deposit paid out to a linked account at maturity.
type FixedDeposit struct {
	DepositID                  string          `json:"depositID"`
	Reference                  string          `json:"reference"`
	CustomerRef                string          `json:"customerRef"`
	AccountID                  string          `json:"accountID"` // Payout account
	PrincipalAmount            decimal.Decimal `json:"principalAmount"`
	CurrencyCode               string          `json:"currencyCode"`
	InterestRate               decimal.Decimal `json:"interestRate"` // Annual, percent
	TermMonths                 int             `json:"termMonths"`
	Compounding                Compounding     `json:"compounding"`
	DepositDate                time.Time       `json:"depositDate"`
	MaturityDate               time.Time       `json:"maturityDate"`
	MaturityAmount             decimal.Decimal `json:"maturityAmount"`
	AllowEarlyWithdrawal       bool            `json:"allowEarlyWithdrawal"`
	EarlyWithdrawalPenaltyRate decimal.Decimal `json:"earlyWithdrawalPenaltyRate"` // Percent
	State                      DepositState    `json:"state"`
	RenewedFromID              *string         `json:"renewedFromID,omitempty"`
	ClosedAt                   *time.Time      `json:"closedAt,omitempty"`
	PayoutTransactionID        *string         `json:"payoutTransactionID,omitempty"`
	AuditFields
}

// DepositValuation is the point-in-time value of a deposit.
type DepositValuation struct {
	AsOf            time.Time       `json:"asOf"`
	DaysElapsed     int             `json:"daysElapsed"`
	AccruedInterest decimal.Decimal `json:"accruedInterest"`
	CurrentValue    decimal.Decimal `json:"currentValue"`
}

// DepositPayout is the gross, penalty and net breakdown of a deposit payout.
type DepositPayout struct {
	Gross   decimal.Decimal `json:"gross"`
	Penalty decimal.Decimal `json:"penalty"`
	Net     decimal.Decimal `json:"net"`
}

// MaturityRunResult summarises an automatic maturity pass.
type MaturityRunResult struct {
	RunDate time.Time `json:"runDate"`
	Matured int       `json:"matured"`
	Failed  int       `json:"failed"`
	Errors  []string  `json:"errors,omitempty"`
}
