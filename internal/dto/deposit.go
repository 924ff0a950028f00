package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDepositRequest defines a new fixed deposit.
type CreateDepositRequest struct {
	CustomerRef                string             `json:"customerRef" binding:"required"`
	AccountID                  string             `json:"accountID" binding:"required"`
	PrincipalAmount            decimal.Decimal    `json:"principalAmount"`
	CurrencyCode               string             `json:"currencyCode" binding:"required,len=3"`
	InterestRate               decimal.Decimal    `json:"interestRate"`
	TermMonths                 int                `json:"termMonths" binding:"required,min=1"`
	Compounding                domain.Compounding `json:"compounding" binding:"omitempty,oneof=simple monthly quarterly annual"`
	DepositDate                *time.Time         `json:"depositDate"`
	AllowEarlyWithdrawal       *bool              `json:"allowEarlyWithdrawal"`
	EarlyWithdrawalPenaltyRate *decimal.Decimal   `json:"earlyWithdrawalPenaltyRate"`
}

// EarlyWithdrawalRequest optionally fixes the gross payout; by default the
// current value is paid out.
type EarlyWithdrawalRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// DepositResponse defines the data returned for a fixed deposit.
type DepositResponse struct {
	DepositID                  string                   `json:"depositID"`
	Reference                  string                   `json:"reference"`
	CustomerRef                string                   `json:"customerRef"`
	AccountID                  string                   `json:"accountID"`
	PrincipalAmount            decimal.Decimal          `json:"principalAmount"`
	CurrencyCode               string                   `json:"currencyCode"`
	InterestRate               decimal.Decimal          `json:"interestRate"`
	TermMonths                 int                      `json:"termMonths"`
	Compounding                domain.Compounding       `json:"compounding"`
	DepositDate                time.Time                `json:"depositDate"`
	MaturityDate               time.Time                `json:"maturityDate"`
	MaturityAmount             decimal.Decimal          `json:"maturityAmount"`
	AllowEarlyWithdrawal       bool                     `json:"allowEarlyWithdrawal"`
	EarlyWithdrawalPenaltyRate decimal.Decimal          `json:"earlyWithdrawalPenaltyRate"`
	State                      domain.DepositState      `json:"state"`
	RenewedFromID              *string                  `json:"renewedFromID,omitempty"`
	Valuation                  *domain.DepositValuation `json:"valuation,omitempty"`
}

// DepositPayoutResponse returns the deposit and the payout breakdown.
type DepositPayoutResponse struct {
	Deposit DepositResponse      `json:"deposit"`
	Payout  domain.DepositPayout `json:"payout"`
}

// ToDepositResponse converts a domain.FixedDeposit to its DTO. valuation may be nil.
func ToDepositResponse(fd *domain.FixedDeposit, valuation *domain.DepositValuation) DepositResponse {
	return DepositResponse{
		DepositID:                  fd.DepositID,
		Reference:                  fd.Reference,
		CustomerRef:                fd.CustomerRef,
		AccountID:                  fd.AccountID,
		PrincipalAmount:            fd.PrincipalAmount,
		CurrencyCode:               fd.CurrencyCode,
		InterestRate:               fd.InterestRate,
		TermMonths:                 fd.TermMonths,
		Compounding:                fd.Compounding,
		DepositDate:                fd.DepositDate,
		MaturityDate:               fd.MaturityDate,
		MaturityAmount:             fd.MaturityAmount,
		AllowEarlyWithdrawal:       fd.AllowEarlyWithdrawal,
		EarlyWithdrawalPenaltyRate: fd.EarlyWithdrawalPenaltyRate,
		State:                      fd.State,
		RenewedFromID:              fd.RenewedFromID,
		Valuation:                  valuation,
	}
}
