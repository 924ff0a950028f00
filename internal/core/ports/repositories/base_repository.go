package repositories

import (
	"context"
)

// TransactionManager runs a unit of work. Every repository handed to fn is
// bound to the same database transaction; returning an error rolls all of
// it back.
//
// Row locks taken through the *ForUpdate methods are held until fn returns.
// Callers lock the owning entity (transaction, instruction, loan, deposit)
// first and then all accounts in a single FindAccountsByIDsForUpdate call.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos RepositoryProvider) error) error
}

// Store is the persistence entry point used by the service container.
type Store interface {
	TransactionManager
	// Repositories returns repositories that run outside any unit of work.
	Repositories() RepositoryProvider
}

// SequenceGenerator hands out human readable references such as TXN000042.
// Values are monotonic per prefix and are not rolled back, so gaps are
// possible.
type SequenceGenerator interface {
	NextReference(ctx context.Context, prefix string) (string, error)
}

// Reference prefixes.
const (
	PrefixAccount     = "ACC"
	PrefixTransaction = "TXN"
	PrefixBatch       = "BAT"
	PrefixInstruction = "SO"
	PrefixLoan        = "LN"
	PrefixDeposit     = "FD"
	PrefixScheduled   = "ST"
)
