package services

import (
	"context"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByNumber retrieves an account by its customer facing number.
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// ListTransactions returns the account's transactions, newest first.
	ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// AccountWriterSvc defines lifecycle operations for accounts
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error)
	ActivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)
	MarkDormant(ctx context.Context, accountID string, actor string) (*domain.Account, error)
	RestrictAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)
	UnrestrictAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)

	// CloseAccount fails with ErrNonZeroBalance unless the balance is zero.
	CloseAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error)

	SetHold(ctx context.Context, accountID string, amount decimal.Decimal, actor string) (*domain.Account, error)
	SetOverdraft(ctx context.Context, accountID string, allowed bool, limit decimal.Decimal, actor string) (*domain.Account, error)
}

// AccountMovementSvc defines the direct money movements on an account
type AccountMovementSvc interface {
	// Deposit creates and posts a deposit in one unit of work.
	Deposit(ctx context.Context, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error)

	// Withdraw creates and posts a withdrawal in one unit of work.
	Withdraw(ctx context.Context, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountMovementSvc
}
