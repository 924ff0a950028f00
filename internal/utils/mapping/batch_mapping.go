package mapping

import (
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

// ToModelBatch converts the batch header. Lines are mapped separately.
func ToModelBatch(d domain.Batch) models.Batch {
	return models.Batch{
		BatchID:        d.BatchID,
		Reference:      d.Reference,
		Kind:           string(d.Kind),
		CurrencyCode:   d.CurrencyCode,
		Description:    d.Description,
		State:          string(d.State),
		TotalLines:     d.TotalLines,
		TotalAmount:    d.TotalAmount,
		SuccessCount:   d.SuccessCount,
		FailedCount:    d.FailedCount,
		ProcessedCount: d.ProcessedCount,
		ErrorLog:       d.ErrorLog,
		ProcessedBy:    domain.StringPtr(d.ProcessedBy),
		ProcessedAt:    d.ProcessedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainBatch(m models.Batch) domain.Batch {
	return domain.Batch{
		BatchID:        m.BatchID,
		Reference:      m.Reference,
		Kind:           domain.BatchKind(m.Kind),
		CurrencyCode:   m.CurrencyCode,
		Description:    m.Description,
		State:          domain.BatchState(m.State),
		TotalLines:     m.TotalLines,
		TotalAmount:    m.TotalAmount,
		SuccessCount:   m.SuccessCount,
		FailedCount:    m.FailedCount,
		ProcessedCount: m.ProcessedCount,
		ErrorLog:       m.ErrorLog,
		ProcessedBy:    domain.Deref(m.ProcessedBy),
		ProcessedAt:    utcPtr(m.ProcessedAt),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

func ToModelBatchLine(d domain.BatchLine) models.BatchLine {
	return models.BatchLine{
		LineID:               d.LineID,
		BatchID:              d.BatchID,
		RowNumber:            d.RowNumber,
		AccountID:            d.AccountID,
		DestinationAccountID: d.DestinationAccountID,
		Amount:               d.Amount,
		Reference:            d.Reference,
		Description:          d.Description,
		State:                string(d.State),
		ErrorMessage:         d.ErrorMessage,
		TransactionID:        d.TransactionID,
	}
}

func ToDomainBatchLine(m models.BatchLine) domain.BatchLine {
	return domain.BatchLine{
		LineID:               m.LineID,
		BatchID:              m.BatchID,
		RowNumber:            m.RowNumber,
		AccountID:            m.AccountID,
		DestinationAccountID: m.DestinationAccountID,
		Amount:               m.Amount,
		Reference:            m.Reference,
		Description:          m.Description,
		State:                domain.BatchLineState(m.State),
		ErrorMessage:         m.ErrorMessage,
		TransactionID:        m.TransactionID,
	}
}
