package mapping

import (
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

func ToModelScheduled(d domain.ScheduledTransaction) models.ScheduledTransaction {
	return models.ScheduledTransaction{
		ScheduledID:          d.ScheduledID,
		Reference:            d.Reference,
		TransactionType:      string(d.TransactionType),
		AccountID:            d.AccountID,
		DestinationAccountID: d.DestinationAccountID,
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		PaymentReference:     d.PaymentReference,
		Description:          d.Description,
		ScheduledDate:        d.ScheduledDate,
		AutoProcess:          d.AutoProcess,
		State:                string(d.State),
		ProcessedAt:          d.ProcessedAt,
		TransactionID:        d.TransactionID,
		ErrorMessage:         d.ErrorMessage,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainScheduled(m models.ScheduledTransaction) domain.ScheduledTransaction {
	return domain.ScheduledTransaction{
		ScheduledID:          m.ScheduledID,
		Reference:            m.Reference,
		TransactionType:      domain.TransactionType(m.TransactionType),
		AccountID:            m.AccountID,
		DestinationAccountID: m.DestinationAccountID,
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		PaymentReference:     m.PaymentReference,
		Description:          m.Description,
		ScheduledDate:        m.ScheduledDate.UTC(),
		AutoProcess:          m.AutoProcess,
		State:                domain.ScheduledState(m.State),
		ProcessedAt:          utcPtr(m.ProcessedAt),
		TransactionID:        m.TransactionID,
		ErrorMessage:         m.ErrorMessage,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
