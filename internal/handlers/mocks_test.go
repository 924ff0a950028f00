package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/core_banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testIssuer    = "ledger-test"
)

// generateTestToken creates a signed JWT for the given subject.
func generateTestToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(testJWTSecret))
}

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) account(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID))
}
func (m *MockAccountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountNumber))
}
func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, req, actor))
}
func (m *MockAccountService) ActivateAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) MarkDormant(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) RestrictAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) UnrestrictAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) CloseAccount(ctx context.Context, accountID string, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, actor))
}
func (m *MockAccountService) SetHold(ctx context.Context, accountID string, amount decimal.Decimal, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, amount, actor))
}
func (m *MockAccountService) SetOverdraft(ctx context.Context, accountID string, allowed bool, limit decimal.Decimal, actor string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID, allowed, limit, actor))
}
func (m *MockAccountService) Deposit(ctx context.Context, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockAccountService) Withdraw(ctx context.Context, accountID string, req dto.MoneyMovementRequest, actor string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) txn(args mock.Arguments) (*domain.Transaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID))
}
func (m *MockTransactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, req, actor))
}
func (m *MockTransactionService) CreateAndPostTransaction(ctx context.Context, req dto.CreateTransactionRequest, actor string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, req, actor))
}
func (m *MockTransactionService) PostTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID, actor))
}
func (m *MockTransactionService) ReverseTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID, actor))
}
func (m *MockTransactionService) CancelTransaction(ctx context.Context, transactionID string, actor string) (*domain.Transaction, error) {
	return m.txn(m.Called(ctx, transactionID, actor))
}
func (m *MockTransactionService) ReconcileTransactions(ctx context.Context, transactionIDs []string, actor string) ([]domain.Transaction, error) {
	args := m.Called(ctx, transactionIDs, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock BatchService ---
type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) batch(args mock.Arguments) (*domain.Batch, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchService) ValidateRows(ctx context.Context, kind domain.BatchKind, rows []domain.BatchRow) ([]domain.BatchLine, error) {
	args := m.Called(ctx, kind, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchLine), args.Error(1)
}
func (m *MockBatchService) CreateBatch(ctx context.Context, req dto.CreateBatchRequest, actor string) (*domain.Batch, error) {
	return m.batch(m.Called(ctx, req, actor))
}
func (m *MockBatchService) ImportBatchCSV(ctx context.Context, params dto.ImportBatchParams, r io.Reader, actor string) (*domain.Batch, error) {
	// The reader is drained here so tests can assert on the uploaded content.
	content, _ := io.ReadAll(r)
	return m.batch(m.Called(ctx, params, string(content), actor))
}
func (m *MockBatchService) GetBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	return m.batch(m.Called(ctx, batchID))
}
func (m *MockBatchService) ProcessBatch(ctx context.Context, batchID string, actor string) (*domain.Batch, error) {
	return m.batch(m.Called(ctx, batchID, actor))
}
func (m *MockBatchService) CancelBatch(ctx context.Context, batchID string, actor string) (*domain.Batch, error) {
	return m.batch(m.Called(ctx, batchID, actor))
}

var _ portssvc.BatchSvcFacade = (*MockBatchService)(nil)

// --- Mock DepositService ---
type MockDepositService struct {
	mock.Mock
}

func (m *MockDepositService) deposit(args mock.Arguments) (*domain.FixedDeposit, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FixedDeposit), args.Error(1)
}

func (m *MockDepositService) GetDeposit(ctx context.Context, depositID string) (*domain.FixedDeposit, error) {
	return m.deposit(m.Called(ctx, depositID))
}
func (m *MockDepositService) ValueDeposit(ctx context.Context, depositID string, asOf time.Time) (*domain.DepositValuation, error) {
	args := m.Called(ctx, depositID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositValuation), args.Error(1)
}
func (m *MockDepositService) CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, actor string) (*domain.FixedDeposit, error) {
	return m.deposit(m.Called(ctx, req, actor))
}
func (m *MockDepositService) ActivateDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error) {
	return m.deposit(m.Called(ctx, depositID, actor))
}
func (m *MockDepositService) MatureDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, *domain.DepositPayout, error) {
	return m.payout(m.Called(ctx, depositID, actor))
}
func (m *MockDepositService) WithdrawEarly(ctx context.Context, depositID string, amount *decimal.Decimal, actor string) (*domain.FixedDeposit, *domain.DepositPayout, error) {
	return m.payout(m.Called(ctx, depositID, amount, actor))
}
func (m *MockDepositService) payout(args mock.Arguments) (*domain.FixedDeposit, *domain.DepositPayout, error) {
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.FixedDeposit), args.Get(1).(*domain.DepositPayout), args.Error(2)
}
func (m *MockDepositService) RenewDeposit(ctx context.Context, depositID string, actor string) (*domain.FixedDeposit, error) {
	return m.deposit(m.Called(ctx, depositID, actor))
}
func (m *MockDepositService) MatureDueDeposits(ctx context.Context, today time.Time) (*domain.MaturityRunResult, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaturityRunResult), args.Error(1)
}

var _ portssvc.DepositSvcFacade = (*MockDepositService)(nil)

// --- Mock LoanService ---
type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) loan(args mock.Arguments) (*domain.Loan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID))
}
func (m *MockLoanService) GetLoanStatus(ctx context.Context, loanID string, asOf time.Time) (*domain.LoanStatus, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanStatus), args.Error(1)
}
func (m *MockLoanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, req, actor))
}
func (m *MockLoanService) SubmitLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, actor))
}
func (m *MockLoanService) ApproveLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, actor))
}
func (m *MockLoanService) RejectLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, actor))
}
func (m *MockLoanService) DisburseLoan(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, actor))
}
func (m *MockLoanService) GenerateSchedule(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, actor))
}
func (m *MockLoanService) RecordPayment(ctx context.Context, loanID string, paymentNumber int, amount decimal.Decimal, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, paymentNumber, amount, actor))
}
func (m *MockLoanService) MarkDefault(ctx context.Context, loanID string, actor string) (*domain.Loan, error) {
	return m.loan(m.Called(ctx, loanID, actor))
}
func (m *MockLoanService) RefreshOverdue(ctx context.Context, today time.Time) (int, error) {
	args := m.Called(ctx, today)
	return args.Int(0), args.Error(1)
}

var _ portssvc.LoanSvcFacade = (*MockLoanService)(nil)

// --- Mock SchedulerService ---
type MockSchedulerService struct {
	mock.Mock
}

func (m *MockSchedulerService) instruction(args mock.Arguments) (*domain.RecurringInstruction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringInstruction), args.Error(1)
}

func (m *MockSchedulerService) CreateInstruction(ctx context.Context, req dto.CreateInstructionRequest, actor string) (*domain.RecurringInstruction, error) {
	return m.instruction(m.Called(ctx, req, actor))
}
func (m *MockSchedulerService) GetInstruction(ctx context.Context, instructionID string) (*domain.RecurringInstruction, error) {
	return m.instruction(m.Called(ctx, instructionID))
}
func (m *MockSchedulerService) ActivateInstruction(ctx context.Context, instructionID string, actor string) (*domain.RecurringInstruction, error) {
	return m.instruction(m.Called(ctx, instructionID, actor))
}
func (m *MockSchedulerService) CancelInstruction(ctx context.Context, instructionID string, actor string) (*domain.RecurringInstruction, error) {
	return m.instruction(m.Called(ctx, instructionID, actor))
}
func (m *MockSchedulerService) FindDueInstructions(ctx context.Context, today time.Time) ([]domain.RecurringInstruction, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecurringInstruction), args.Error(1)
}
func (m *MockSchedulerService) RunDue(ctx context.Context, today time.Time) (*domain.SchedulerRunResult, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulerRunResult), args.Error(1)
}

func (m *MockSchedulerService) scheduled(args mock.Arguments) (*domain.ScheduledTransaction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledTransaction), args.Error(1)
}

func (m *MockSchedulerService) CreateScheduledTransaction(ctx context.Context, req dto.CreateScheduledTransactionRequest, actor string) (*domain.ScheduledTransaction, error) {
	return m.scheduled(m.Called(ctx, req, actor))
}
func (m *MockSchedulerService) GetScheduledTransaction(ctx context.Context, scheduledID string) (*domain.ScheduledTransaction, error) {
	return m.scheduled(m.Called(ctx, scheduledID))
}
func (m *MockSchedulerService) CancelScheduledTransaction(ctx context.Context, scheduledID string, actor string) (*domain.ScheduledTransaction, error) {
	return m.scheduled(m.Called(ctx, scheduledID, actor))
}
func (m *MockSchedulerService) ExecuteScheduledTransaction(ctx context.Context, scheduledID string, actor string) (*domain.ScheduledTransaction, error) {
	return m.scheduled(m.Called(ctx, scheduledID, actor))
}

var _ portssvc.SchedulerSvcFacade = (*MockSchedulerService)(nil)
