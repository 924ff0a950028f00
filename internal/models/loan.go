package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is a row of the loans table.
type Loan struct {
	LoanID           string          `db:"loan_id"`
	Reference        string          `db:"reference"`
	CustomerRef      string          `db:"customer_ref"`
	AccountID        *string         `db:"account_id"`
	PrincipalAmount  decimal.Decimal `db:"principal_amount"`
	CurrencyCode     string          `db:"currency_code"`
	InterestRate     decimal.Decimal `db:"interest_rate"`
	TermMonths       int             `db:"term_months"`
	PaymentFrequency string          `db:"payment_frequency"`
	EMIAmount        decimal.Decimal `db:"emi_amount"`
	ApplicationDate  time.Time       `db:"application_date"`
	ApprovalDate     *time.Time      `db:"approval_date"`
	DisbursementDate *time.Time      `db:"disbursement_date"`
	MaturityDate     *time.Time      `db:"maturity_date"`
	State            string          `db:"state"`
	AuditFields
}

// LoanPayment is a row of the loan_payments table.
type LoanPayment struct {
	LoanID          string          `db:"loan_id"`
	PaymentNumber   int             `db:"payment_number"`
	DueDate         time.Time       `db:"due_date"`
	PrincipalAmount decimal.Decimal `db:"principal_amount"`
	InterestAmount  decimal.Decimal `db:"interest_amount"`
	PenaltyAmount   decimal.Decimal `db:"penalty_amount"`
	PaidAmount      decimal.Decimal `db:"paid_amount"`
	PaymentDate     *time.Time      `db:"payment_date"`
	TransactionID   *string         `db:"transaction_id"`
	State           string          `db:"state"`
}
