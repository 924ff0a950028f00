package mapping

import (
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

func ToModelInstruction(d domain.RecurringInstruction) models.RecurringInstruction {
	return models.RecurringInstruction{
		InstructionID:        d.InstructionID,
		Reference:            d.Reference,
		AccountID:            d.AccountID,
		DestinationAccountID: d.DestinationAccountID,
		BeneficiaryName:      d.BeneficiaryName,
		Amount:               d.Amount,
		Frequency:            string(d.Frequency),
		NextExecutionDate:    d.NextExecutionDate,
		EndDate:              d.EndDate,
		PaymentReference:     d.PaymentReference,
		State:                string(d.State),
		LastExecutedAt:       d.LastExecutedAt,
		LastError:            d.LastError,
		ExecutionCount:       d.ExecutionCount,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

func ToDomainInstruction(m models.RecurringInstruction) domain.RecurringInstruction {
	return domain.RecurringInstruction{
		InstructionID:        m.InstructionID,
		Reference:            m.Reference,
		AccountID:            m.AccountID,
		DestinationAccountID: m.DestinationAccountID,
		BeneficiaryName:      m.BeneficiaryName,
		Amount:               m.Amount,
		Frequency:            domain.Frequency(m.Frequency),
		NextExecutionDate:    m.NextExecutionDate.UTC(),
		EndDate:              utcPtr(m.EndDate),
		PaymentReference:     m.PaymentReference,
		State:                domain.InstructionState(m.State),
		LastExecutedAt:       utcPtr(m.LastExecutedAt),
		LastError:            m.LastError,
		ExecutionCount:       m.ExecutionCount,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
}
