package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	BatchRepo       BatchRepositoryFacade
	InstructionRepo InstructionRepositoryFacade
	ScheduledRepo   ScheduledRepositoryFacade
	LoanRepo        LoanRepositoryFacade
	DepositRepo     DepositRepositoryFacade
	Sequences       SequenceGenerator
}
