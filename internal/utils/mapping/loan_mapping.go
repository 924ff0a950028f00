package mapping

import (
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

// ToModelLoan converts the loan header. Schedule rows are mapped separately.
func ToModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:           d.LoanID,
		Reference:        d.Reference,
		CustomerRef:      d.CustomerRef,
		AccountID:        d.AccountID,
		PrincipalAmount:  d.PrincipalAmount,
		CurrencyCode:     d.CurrencyCode,
		InterestRate:     d.InterestRate,
		TermMonths:       d.TermMonths,
		PaymentFrequency: string(d.PaymentFrequency),
		EMIAmount:        d.EMIAmount,
		ApplicationDate:  d.ApplicationDate,
		ApprovalDate:     d.ApprovalDate,
		DisbursementDate: d.DisbursementDate,
		MaturityDate:     d.MaturityDate,
		State:            string(d.State),
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:           m.LoanID,
		Reference:        m.Reference,
		CustomerRef:      m.CustomerRef,
		AccountID:        m.AccountID,
		PrincipalAmount:  m.PrincipalAmount,
		CurrencyCode:     m.CurrencyCode,
		InterestRate:     m.InterestRate,
		TermMonths:       m.TermMonths,
		PaymentFrequency: domain.PaymentFrequency(m.PaymentFrequency),
		EMIAmount:        m.EMIAmount,
		ApplicationDate:  m.ApplicationDate.UTC(),
		ApprovalDate:     utcPtr(m.ApprovalDate),
		DisbursementDate: utcPtr(m.DisbursementDate),
		MaturityDate:     utcPtr(m.MaturityDate),
		State:            domain.LoanState(m.State),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

func ToModelLoanPayment(d domain.LoanPayment) models.LoanPayment {
	return models.LoanPayment{
		LoanID:          d.LoanID,
		PaymentNumber:   d.PaymentNumber,
		DueDate:         d.DueDate,
		PrincipalAmount: d.PrincipalAmount,
		InterestAmount:  d.InterestAmount,
		PenaltyAmount:   d.PenaltyAmount,
		PaidAmount:      d.PaidAmount,
		PaymentDate:     d.PaymentDate,
		TransactionID:   d.TransactionID,
		State:           string(d.State),
	}
}

func ToDomainLoanPayment(m models.LoanPayment) domain.LoanPayment {
	return domain.LoanPayment{
		LoanID:          m.LoanID,
		PaymentNumber:   m.PaymentNumber,
		DueDate:         m.DueDate.UTC(),
		PrincipalAmount: m.PrincipalAmount,
		InterestAmount:  m.InterestAmount,
		PenaltyAmount:   m.PenaltyAmount,
		PaidAmount:      m.PaidAmount,
		PaymentDate:     utcPtr(m.PaymentDate),
		TransactionID:   m.TransactionID,
		State:           domain.PaymentState(m.State),
	}
}
