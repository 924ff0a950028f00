package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentFrequency is the repayment cadence of a loan.
type PaymentFrequency string

const (
	PayMonthly    PaymentFrequency = "monthly"
	PayQuarterly  PaymentFrequency = "quarterly"
	PaySemiAnnual PaymentFrequency = "semi_annual"
	PayAnnual     PaymentFrequency = "annual"
)

// Months returns the number of months between installments, or 0 if unknown.
func (f PaymentFrequency) Months() int {
	switch f {
	case PayMonthly:
		return 1
	case PayQuarterly:
		return 3
	case PaySemiAnnual:
		return 6
	case PayAnnual:
		return 12
	}
	return 0
}

// LoanState is the lifecycle state of a loan.
type LoanState string

const (
	LoanDraft     LoanState = "draft"
	LoanSubmitted LoanState = "submitted"
	LoanApproved  LoanState = "approved"
	LoanRejected  LoanState = "rejected"
	LoanDisbursed LoanState = "disbursed"
	LoanClosed    LoanState = "closed"
	LoanDefaulted LoanState = "defaulted"
)

// PaymentState is the state of one installment.
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentPartial   PaymentState = "partial"
	PaymentPaid      PaymentState = "paid"
	PaymentOverdue   PaymentState = "overdue"
	PaymentDefaulted PaymentState = "defaulted"
)

// Loan is a term loan repaid in equal installments.
type Loan struct {
	LoanID           string           `json:"loanID"`
	Reference        string           `json:"reference"`
	CustomerRef      string           `json:"customerRef"`
	AccountID        *string          `json:"accountID,omitempty"` // Repayment account
	PrincipalAmount  decimal.Decimal  `json:"principalAmount"`
	CurrencyCode     string           `json:"currencyCode"`
	InterestRate     decimal.Decimal  `json:"interestRate"` // Annual, percent
	TermMonths       int              `json:"termMonths"`
	PaymentFrequency PaymentFrequency `json:"paymentFrequency"`
	EMIAmount        decimal.Decimal  `json:"emiAmount"`
	ApplicationDate  time.Time        `json:"applicationDate"`
	ApprovalDate     *time.Time       `json:"approvalDate,omitempty"`
	DisbursementDate *time.Time       `json:"disbursementDate,omitempty"`
	MaturityDate     *time.Time       `json:"maturityDate,omitempty"`
	State            LoanState        `json:"state"`
	Payments         []LoanPayment    `json:"payments,omitempty"`
	AuditFields
}

// LoanPayment is one row of the repayment schedule.
type LoanPayment struct {
	LoanID          string          `json:"loanID"`
	PaymentNumber   int             `json:"paymentNumber"`
	DueDate         time.Time       `json:"dueDate"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	PenaltyAmount   decimal.Decimal `json:"penaltyAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty"`
	TransactionID   *string         `json:"transactionID,omitempty"`
	State           PaymentState    `json:"state"`
}

// TotalAmount is principal + interest + penalty.
func (p LoanPayment) TotalAmount() decimal.Decimal {
	return p.PrincipalAmount.Add(p.InterestAmount).Add(p.PenaltyAmount)
}

// OutstandingAmount is what remains to be paid on this row.
func (p LoanPayment) OutstandingAmount() decimal.Decimal {
	return p.TotalAmount().Sub(p.PaidAmount)
}

// IsOverdue reports whether the row is unpaid and past its due date.
func (p LoanPayment) IsOverdue(today time.Time) bool {
	if p.State == PaymentPaid {
		return false
	}
	return p.DueDate.Before(today)
}

// LoanStatus is the derived repayment position of a loan as of a date.
type LoanStatus struct {
	LoanID               string          `json:"loanID"`
	AsOf                 time.Time       `json:"asOf"`
	TotalPaid            decimal.Decimal `json:"totalPaid"`
	OutstandingPrincipal decimal.Decimal `json:"outstandingPrincipal"`
	IsOverdue            bool            `json:"isOverdue"`
	OverdueDays          int             `json:"overdueDays"`
	OverdueAmount        decimal.Decimal `json:"overdueAmount"`
}

// Status derives the repayment position from the schedule rows.
func (l Loan) Status(asOf time.Time) LoanStatus {
	st := LoanStatus{
		LoanID:               l.LoanID,
		AsOf:                 asOf,
		TotalPaid:            decimal.Zero,
		OutstandingPrincipal: l.PrincipalAmount,
		OverdueAmount:        decimal.Zero,
	}
	paidPrincipal := decimal.Zero
	for _, p := range l.Payments {
		st.TotalPaid = st.TotalPaid.Add(p.PaidAmount)
		if p.State == PaymentPaid {
			paidPrincipal = paidPrincipal.Add(p.PrincipalAmount)
		}
		if p.IsOverdue(asOf) {
			st.IsOverdue = true
			st.OverdueAmount = st.OverdueAmount.Add(p.OutstandingAmount())
			days := int(asOf.Sub(p.DueDate).Hours() / 24)
			if days > st.OverdueDays {
				st.OverdueDays = days
			}
		}
	}
	if len(l.Payments) > 0 {
		st.OutstandingPrincipal = l.PrincipalAmount.Sub(paidPrincipal)
	}
	return st
}
