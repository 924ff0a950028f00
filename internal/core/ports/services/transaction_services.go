package services

import (
	"context"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
)

// TransactionReaderSvc defines read operations for transactions
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// TransactionWriterSvc drives the posting state machine:
// draft/pending -> posted -> reconciled | reversed, draft/pending -> cancelled.
type TransactionWriterSvc interface {
	// CreateTransaction stores a draft or pending transaction with the sign
	// derived from its type.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error)

	// CreateAndPostTransaction creates and posts in a single unit of work.
	CreateAndPostTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error)

	PostTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)

	// ReverseTransaction posts a compensating reversal and returns it.
	ReverseTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)

	CancelTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error)

	// ReconcileTransactions marks every id reconciled, or none of them.
	ReconcileTransactions(ctx context.Context, transactionIDs []string, actor string) ([]domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction service interfaces
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
