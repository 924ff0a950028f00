package dto

import (
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest defines a loan application.
type CreateLoanRequest struct {
	CustomerRef      string                  `json:"customerRef" binding:"required"`
	AccountID        *string                 `json:"accountID"`
	PrincipalAmount  decimal.Decimal         `json:"principalAmount"`
	CurrencyCode     string                  `json:"currencyCode" binding:"required,len=3"`
	InterestRate     decimal.Decimal         `json:"interestRate"`
	TermMonths       int                     `json:"termMonths" binding:"required,min=1"`
	PaymentFrequency domain.PaymentFrequency `json:"paymentFrequency" binding:"omitempty,oneof=monthly quarterly semi_annual annual"`
}

// RecordLoanPaymentRequest is a repayment against one schedule row.
type RecordLoanPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// LoanPaymentResponse is one schedule row.
type LoanPaymentResponse struct {
	PaymentNumber     int                 `json:"paymentNumber"`
	DueDate           time.Time           `json:"dueDate"`
	PrincipalAmount   decimal.Decimal     `json:"principalAmount"`
	InterestAmount    decimal.Decimal     `json:"interestAmount"`
	PenaltyAmount     decimal.Decimal     `json:"penaltyAmount"`
	TotalAmount       decimal.Decimal     `json:"totalAmount"`
	PaidAmount        decimal.Decimal     `json:"paidAmount"`
	OutstandingAmount decimal.Decimal     `json:"outstandingAmount"`
	PaymentDate       *time.Time          `json:"paymentDate,omitempty"`
	State             domain.PaymentState `json:"state"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID           string                  `json:"loanID"`
	Reference        string                  `json:"reference"`
	CustomerRef      string                  `json:"customerRef"`
	AccountID        *string                 `json:"accountID,omitempty"`
	PrincipalAmount  decimal.Decimal         `json:"principalAmount"`
	CurrencyCode     string                  `json:"currencyCode"`
	InterestRate     decimal.Decimal         `json:"interestRate"`
	TermMonths       int                     `json:"termMonths"`
	PaymentFrequency domain.PaymentFrequency `json:"paymentFrequency"`
	EMIAmount        decimal.Decimal         `json:"emiAmount"`
	ApplicationDate  time.Time               `json:"applicationDate"`
	ApprovalDate     *time.Time              `json:"approvalDate,omitempty"`
	DisbursementDate *time.Time              `json:"disbursementDate,omitempty"`
	MaturityDate     *time.Time              `json:"maturityDate,omitempty"`
	State            domain.LoanState        `json:"state"`
	Payments         []LoanPaymentResponse   `json:"payments"`
	Status           *domain.LoanStatus      `json:"status,omitempty"`
}

// ToLoanResponse converts a domain.Loan to its DTO. status may be nil.
func ToLoanResponse(l *domain.Loan, status *domain.LoanStatus) LoanResponse {
	payments := make([]LoanPaymentResponse, len(l.Payments))
	for i, p := range l.Payments {
		payments[i] = LoanPaymentResponse{
			PaymentNumber:     p.PaymentNumber,
			DueDate:           p.DueDate,
			PrincipalAmount:   p.PrincipalAmount,
			InterestAmount:    p.InterestAmount,
			PenaltyAmount:     p.PenaltyAmount,
			TotalAmount:       p.TotalAmount(),
			PaidAmount:        p.PaidAmount,
			OutstandingAmount: p.OutstandingAmount(),
			PaymentDate:       p.PaymentDate,
			State:             p.State,
		}
	}
	return LoanResponse{
		LoanID:           l.LoanID,
		Reference:        l.Reference,
		CustomerRef:      l.CustomerRef,
		AccountID:        l.AccountID,
		PrincipalAmount:  l.PrincipalAmount,
		CurrencyCode:     l.CurrencyCode,
		InterestRate:     l.InterestRate,
		TermMonths:       l.TermMonths,
		PaymentFrequency: l.PaymentFrequency,
		EMIAmount:        l.EMIAmount,
		ApplicationDate:  l.ApplicationDate,
		ApprovalDate:     l.ApprovalDate,
		DisbursementDate: l.DisbursementDate,
		MaturityDate:     l.MaturityDate,
		State:            l.State,
		Payments:         payments,
		Status:           status,
	}
}
