package mapping

import (
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

func ToModelDeposit(d domain.FixedDeposit) models.FixedDeposit {
	return models.FixedDeposit{
		DepositID:                  d.DepositID,
		Reference:                  d.Reference,
		CustomerRef:                d.CustomerRef,
		AccountID:                  d.AccountID,
		PrincipalAmount:            d.PrincipalAmount,
		CurrencyCode:               d.CurrencyCode,
		InterestRate:               d.InterestRate,
		TermMonths:                 d.TermMonths,
		Compounding:                string(d.Compounding),
		DepositDate:                d.DepositDate,
		MaturityDate:               d.MaturityDate,
		MaturityAmount:             d.MaturityAmount,
		AllowEarlyWithdrawal:       d.AllowEarlyWithdrawal,
		EarlyWithdrawalPenaltyRate: d.EarlyWithdrawalPenaltyRate,
		State:                      string(d.State),
		RenewedFromID:              d.RenewedFromID,
		ClosedAt:                   d.ClosedAt,
		PayoutTransactionID:        d.PayoutTransactionID,
		AuditFields:                ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainDeposit(m models.FixedDeposit) domain.FixedDeposit {
	return domain.FixedDeposit{
		DepositID:                  m.DepositID,
		Reference:                  m.Reference,
		CustomerRef:                m.CustomerRef,
		AccountID:                  m.AccountID,
		PrincipalAmount:            m.PrincipalAmount,
		CurrencyCode:               m.CurrencyCode,
		InterestRate:               m.InterestRate,
		TermMonths:                 m.TermMonths,
		Compounding:                domain.Compounding(m.Compounding),
		DepositDate:                m.DepositDate.UTC(),
		MaturityDate:               m.MaturityDate.UTC(),
		MaturityAmount:             m.MaturityAmount,
		AllowEarlyWithdrawal:       m.AllowEarlyWithdrawal,
		EarlyWithdrawalPenaltyRate: m.EarlyWithdrawalPenaltyRate,
		State:                      domain.DepositState(m.State),
		RenewedFromID:              m.RenewedFromID,
		ClosedAt:                   utcPtr(m.ClosedAt),
		PayoutTransactionID:        m.PayoutTransactionID,
		AuditFields:                ToDomainAuditFields(m.AuditFields),
	}
}
