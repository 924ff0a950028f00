package accounting

import (
	"fmt"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultEarlyWithdrawalPenalty is the penalty percentage used when a
// deposit does not carry its own.
var DefaultEarlyWithdrawalPenalty = decimal.NewFromInt(1)

// MaturityAmount returns the payout at the end of the term, rounded to cents.
//
//	simple:   P * (1 + r*months/12)
//	compound: P * (1 + r/k)^(k*months/12)
func MaturityAmount(principal, annualPct decimal.Decimal, termMonths int, mode domain.Compounding) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal %s", apperrors.ErrInvalidAmount, principal)
	}
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: term of %d months", apperrors.ErrValidation, termMonths)
	}
	if !mode.IsValid() {
		return decimal.Zero, fmt.Errorf("%w: unknown compounding %q", apperrors.ErrValidation, mode)
	}

	r := PercentToRate(annualPct)
	months := decimal.NewFromInt(int64(termMonths))
	k := mode.PeriodsPerYear()
	if k == 0 {
		return RoundMoney(principal.Mul(one.Add(r.Mul(months).Div(twelve)))), nil
	}

	kd := decimal.NewFromInt(int64(k))
	periods := kd.Mul(months).Div(twelve)
	return RoundMoney(principal.Mul(PowFrac(one.Add(r.Div(kd)), periods))), nil
}

// AccruedInterest returns interest earned after days, rounded to cents.
// Compounding deposits accrue daily.
//
//	simple:   P * r * days/365
//	compound: P * ((1 + r/365)^days - 1)
func AccruedInterest(principal, annualPct decimal.Decimal, days int, mode domain.Compounding) decimal.Decimal {
	if days <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	r := PercentToRate(annualPct)
	d := decimal.NewFromInt(int64(days))
	if mode.PeriodsPerYear() == 0 {
		return RoundMoney(principal.Mul(r).Mul(d).Div(daysInYear))
	}
	growth := PowInt(one.Add(r.Div(daysInYear)), days)
	return RoundMoney(principal.Mul(growth.Sub(one)))
}

// SplitEarlyWithdrawal applies the penalty percentage to a gross payout.
func SplitEarlyWithdrawal(gross, penaltyPct decimal.Decimal) domain.DepositPayout {
	penalty := RoundMoney(gross.Mul(PercentToRate(penaltyPct)))
	return domain.DepositPayout{
		Gross:   gross,
		Penalty: penalty,
		Net:     gross.Sub(penalty),
	}
}

// ValueDeposit computes accrued interest and current value of a deposit
// as of asOf. Only active deposits accrue.
func ValueDeposit(fd domain.FixedDeposit, asOf time.Time) domain.DepositValuation {
	days := DaysBetween(fd.DepositDate, asOf)
	accrued := decimal.Zero
	if fd.State == domain.DepositActive {
		accrued = AccruedInterest(fd.PrincipalAmount, fd.InterestRate, days, fd.Compounding)
	}
	return domain.DepositValuation{
		AsOf:            asOf,
		DaysElapsed:     max(days, 0),
		AccruedInterest: accrued,
		CurrentValue:    fd.PrincipalAmount.Add(accrued),
	}
}
