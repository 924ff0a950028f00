package services

import (
	portsrepo "github.com/SscSPs/core_banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// Every service shares the same store, clock, event publisher and metrics.
func NewServiceContainer(store portsrepo.Store, options ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:     NewAccountService(store, options...),
		Transaction: NewTransactionService(store, options...),
		Batch:       NewBatchService(store, options...),
		Scheduler:   NewSchedulerService(store, options...),
		Loan:        NewLoanService(store, options...),
		Deposit:     NewDepositService(store, options...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade     = (*accountService)(nil)
	_ portssvc.TransactionSvcFacade = (*transactionService)(nil)
	_ portssvc.BatchSvcFacade       = (*batchService)(nil)
	_ portssvc.SchedulerSvcFacade   = (*schedulerService)(nil)
	_ portssvc.LoanSvcFacade        = (*loanService)(nil)
	_ portssvc.DepositSvcFacade     = (*depositService)(nil)
)
