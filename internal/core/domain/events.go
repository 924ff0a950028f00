package domain

import "time"

// EventType names a ledger event published after a unit of work commits.
type EventType string

const (
	EventTransactionPosted   EventType = "transaction.posted"
	EventTransactionReversed EventType = "transaction.reversed"
	EventBatchProcessed      EventType = "batch.processed"
	EventInstructionFailed   EventType = "instruction.failed"
	EventScheduledFailed     EventType = "scheduled_transaction.failed"
	EventDepositMatured      EventType = "deposit.matured"
	EventLoanDisbursed       EventType = "loan.disbursed"
)

// LedgerEvent is the envelope written to the event stream.
type LedgerEvent struct {
	EventID    string    `json:"eventID"`
	Type       EventType `json:"type"`
	Key        string    `json:"key"` // Partition key, usually the entity id
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}
