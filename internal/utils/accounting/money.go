package accounting

import (
	"math"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places money is stored with.
const MoneyPlaces = 2

// workingPlaces bounds intermediate precision in long multiplication chains.
const workingPlaces = 18

var (
	hundred    = decimal.NewFromInt(100)
	twelve     = decimal.NewFromInt(12)
	daysInYear = decimal.NewFromInt(365)
	one        = decimal.NewFromInt(1)
)

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PercentToRate converts a percentage such as 12.5 into 0.125.
func PercentToRate(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// PowInt raises base to a non-negative integer power by repeated squaring.
// Intermediate products are rounded to keep the mantissa bounded.
func PowInt(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(b).Round(workingPlaces)
		}
		n >>= 1
		if n > 0 {
			b = b.Mul(b).Round(workingPlaces)
		}
	}
	return result
}

// PowFrac raises base to a fractional power. It goes through float64 and is
// only used when the exponent is not a whole number.
func PowFrac(base, exp decimal.Decimal) decimal.Decimal {
	if exp.IsInteger() {
		return PowInt(base, int(exp.IntPart()))
	}
	return decimal.NewFromFloat(math.Pow(base.InexactFloat64(), exp.InexactFloat64())).Round(workingPlaces)
}

// AvailableBalance mirrors domain.Account.AvailableBalance for callers that
// only hold the raw figures.
func AvailableBalance(balance, hold decimal.Decimal, overdraftAllowed bool, overdraftLimit decimal.Decimal) decimal.Decimal {
	if overdraftAllowed {
		return balance.Add(overdraftLimit).Sub(hold)
	}
	return decimal.Max(decimal.Zero, balance.Sub(hold))
}
