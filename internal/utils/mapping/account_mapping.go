package mapping

import (
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:         d.AccountID,
		AccountNumber:     d.AccountNumber,
		Name:              d.Name,
		CustomerRef:       d.CustomerRef,
		CurrencyCode:      d.CurrencyCode,
		Balance:           d.Balance,
		HoldAmount:        d.HoldAmount,
		OverdraftAllowed:  d.OverdraftAllowed,
		OverdraftLimit:    d.OverdraftLimit,
		State:             models.AccountState(d.State),
		LastTransactionAt: d.LastTransactionAt,
		ActivatedAt:       d.ActivatedAt,
		ClosedAt:          d.ClosedAt,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:         m.AccountID,
		AccountNumber:     m.AccountNumber,
		Name:              m.Name,
		CustomerRef:       m.CustomerRef,
		CurrencyCode:      m.CurrencyCode,
		Balance:           m.Balance,
		HoldAmount:        m.HoldAmount,
		OverdraftAllowed:  m.OverdraftAllowed,
		OverdraftLimit:    m.OverdraftLimit,
		State:             domain.AccountState(m.State),
		LastTransactionAt: utcPtr(m.LastTransactionAt),
		ActivatedAt:       utcPtr(m.ActivatedAt),
		ClosedAt:          utcPtr(m.ClosedAt),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
