package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// LoanReader defines read operations for loans
type LoanReader interface {
	// FindLoanByID returns the loan with its schedule ordered by payment number.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)
}

// LoanWriter defines write operations for loans
type LoanWriter interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error
	UpdateLoan(ctx context.Context, loan domain.Loan) error

	// SaveLoanPayments inserts schedule rows.
	SaveLoanPayments(ctx context.Context, payments []domain.LoanPayment) error
	UpdateLoanPayment(ctx context.Context, payment domain.LoanPayment) error

	// MarkOverduePayments moves pending and partial rows due before today to
	// overdue and returns how many changed.
	MarkOverduePayments(ctx context.Context, today time.Time) (int, error)
}

// LoanLocker locks a loan row.
type LoanLocker interface {
	FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error)
}

// LoanRepositoryFacade combines all loan repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	LoanLocker
}
