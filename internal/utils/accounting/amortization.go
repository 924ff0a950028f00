package accounting

import (
	"fmt"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MonthlyRate converts an annual percentage into a monthly fraction.
func MonthlyRate(annualPct decimal.Decimal) decimal.Decimal {
	return PercentToRate(annualPct).Div(twelve)
}

// ComputeEMI returns the equal monthly installment, rounded to cents:
//
//	P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate. A zero rate spreads the principal evenly.
func ComputeEMI(principal, annualPct decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal %s", apperrors.ErrInvalidAmount, principal)
	}
	if termMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: term of %d months", apperrors.ErrValidation, termMonths)
	}
	if annualPct.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: interest rate %s", apperrors.ErrValidation, annualPct)
	}

	r := MonthlyRate(annualPct)
	if r.IsZero() {
		return RoundMoney(principal.Div(decimal.NewFromInt(int64(termMonths)))), nil
	}
	factor := PowInt(one.Add(r), termMonths)
	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(one))
	return RoundMoney(emi), nil
}

// GenerateSchedule builds the repayment rows for a disbursed loan.
// Interest for each row is charged on the outstanding principal. The final
// nominal row takes whatever principal is left so the loan amortizes to
// exactly zero.
func GenerateSchedule(loan domain.Loan) ([]domain.LoanPayment, error) {
	if len(loan.Payments) > 0 {
		return nil, fmt.Errorf("%w: loan %s has %d rows", apperrors.ErrScheduleAlreadyExists, loan.LoanID, len(loan.Payments))
	}
	if loan.DisbursementDate == nil {
		return nil, fmt.Errorf("%w: loan %s has no disbursement date", apperrors.ErrMissingPrerequisite, loan.LoanID)
	}
	if loan.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: loan %s has no term", apperrors.ErrMissingPrerequisite, loan.LoanID)
	}
	if !loan.EMIAmount.IsPositive() {
		return nil, fmt.Errorf("%w: loan %s has no installment amount", apperrors.ErrMissingPrerequisite, loan.LoanID)
	}

	freqMonths := loan.PaymentFrequency.Months()
	if freqMonths == 0 {
		return nil, fmt.Errorf("%w: unknown payment frequency %q", apperrors.ErrValidation, loan.PaymentFrequency)
	}
	count := loan.TermMonths / freqMonths
	if count == 0 {
		return nil, fmt.Errorf("%w: term of %d months is shorter than one %s period", apperrors.ErrMissingPrerequisite, loan.TermMonths, loan.PaymentFrequency)
	}

	periodRate := MonthlyRate(loan.InterestRate).Mul(decimal.NewFromInt(int64(freqMonths)))
	installment := RoundMoney(loan.EMIAmount.Mul(decimal.NewFromInt(int64(freqMonths))))
	outstanding := loan.PrincipalAmount

	rows := make([]domain.LoanPayment, 0, count)
	for i := 1; i <= count; i++ {
		interest := RoundMoney(outstanding.Mul(periodRate))
		principal := installment.Sub(interest)
		if principal.IsNegative() {
			principal = decimal.Zero
		}
		if principal.GreaterThan(outstanding) || i == count {
			principal = outstanding
		}
		outstanding = outstanding.Sub(principal)

		rows = append(rows, domain.LoanPayment{
			LoanID:          loan.LoanID,
			PaymentNumber:   i,
			DueDate:         AddMonths(*loan.DisbursementDate, i*freqMonths),
			PrincipalAmount: principal,
			InterestAmount:  interest,
			PenaltyAmount:   decimal.Zero,
			PaidAmount:      decimal.Zero,
			State:           domain.PaymentPending,
		})

		if !outstanding.IsPositive() {
			break
		}
	}
	return rows, nil
}
