package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction.
// Channel metadata is stored as JSON.
func ToModelTransaction(d domain.Transaction) (models.Transaction, error) {
	m := models.Transaction{
		TransactionID:        d.TransactionID,
		Reference:            d.Reference,
		TransactionType:      string(d.TransactionType),
		AccountID:            d.AccountID,
		DestinationAccountID: d.DestinationAccountID,
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		ExchangeRate:         d.ExchangeRate,
		State:                string(d.State),
		ReversedEntryID:      d.ReversedEntryID,
		ReversalID:           d.ReversalID,
		TransactionDate:      d.TransactionDate,
		ValueDate:            d.ValueDate,
		Description:          d.Description,
		PostedBy:             domain.StringPtr(d.PostedBy),
		PostedAt:             d.PostedAt,
		ReconciledBy:         domain.StringPtr(d.ReconciledBy),
		ReconciledAt:         d.ReconciledAt,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
	if d.Channel != nil {
		raw, err := json.Marshal(d.Channel)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("encode channel of transaction %s: %w", d.TransactionID, err)
		}
		m.Channel = raw
	}
	return m, nil
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) (domain.Transaction, error) {
	d := domain.Transaction{
		TransactionID:        m.TransactionID,
		Reference:            m.Reference,
		TransactionType:      domain.TransactionType(m.TransactionType),
		AccountID:            m.AccountID,
		DestinationAccountID: m.DestinationAccountID,
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		ExchangeRate:         m.ExchangeRate,
		State:                domain.TransactionState(m.State),
		ReversedEntryID:      m.ReversedEntryID,
		ReversalID:           m.ReversalID,
		TransactionDate:      m.TransactionDate.UTC(),
		ValueDate:            m.ValueDate.UTC(),
		Description:          m.Description,
		PostedBy:             domain.Deref(m.PostedBy),
		PostedAt:             utcPtr(m.PostedAt),
		ReconciledBy:         domain.Deref(m.ReconciledBy),
		ReconciledAt:         utcPtr(m.ReconciledAt),
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
	if len(m.Channel) > 0 {
		var ch domain.ChannelMetadata
		if err := json.Unmarshal(m.Channel, &ch); err != nil {
			return domain.Transaction{}, fmt.Errorf("decode channel of transaction %s: %w", m.TransactionID, err)
		}
		d.Channel = &ch
	}
	return d, nil
}
