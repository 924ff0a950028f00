package services

import (
	"context"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// LoanReaderSvc defines read operations for loans
type LoanReaderSvc interface {
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	GetLoanStatus(ctx context.Context, loanID string, asOf time.Time) (*domain.LoanStatus, error)
}

// LoanWriterSvc defines the loan lifecycle
type LoanWriterSvc interface {
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, actor string) (*domain.Loan, error)
	SubmitLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error)
	ApproveLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error)
	RejectLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error)

	// DisburseLoan stamps today's date and generates the schedule.
	DisburseLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error)

	// GenerateSchedule fails with ErrScheduleAlreadyExists when rows exist.
	GenerateSchedule(ctx context.Context, loanID string, actor string) (*domain.Loan, error)

	// RecordPayment debits the repayment account and applies it to one row.
	RecordPayment(ctx context.Context, loanID string, paymentNumber int, amount decimal.Decimal, actor string) (*domain.Loan, error)

	MarkDefault(ctx context.Context, loanID string, actor string) (*domain.Loan, error)

	// RefreshOverdue flags unpaid rows past due and returns how many changed.
	RefreshOverdue(ctx context.Context, today time.Time) (int, error)
}

// LoanSvcFacade combines all loan service interfaces
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanWriterSvc
}
