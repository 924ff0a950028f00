package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/services"
	"github.com/SscSPs/core_banking_ledger/internal/dto"
	"github.com/SscSPs/core_banking_ledger/internal/platform/metrics"
	"github.com/stretchr/testify/suite"
)

type BatchServiceTestSuite struct {
	ledgerSuite
	payroll  domain.Account
	employee domain.Account
	other    domain.Account
}

func (s *BatchServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.payroll = s.openAccount("USD", "500")
	s.employee = s.openAccount("USD", "0")
	s.other = s.openAccount("USD", "0")
}

func (s *BatchServiceTestSuite) transferBatch(amounts ...string) dto.CreateBatchRequest {
	req := dto.CreateBatchRequest{Kind: domain.BatchTransfer, CurrencyCode: "USD", Description: "payroll"}
	for i, a := range amounts {
		dest := s.employee.AccountNumber
		if i%2 == 1 {
			dest = s.other.AccountID
		}
		req.Rows = append(req.Rows, dto.BatchRowRequest{
			Account:            s.payroll.AccountNumber,
			Amount:             a,
			Reference:          "PAY-" + a,
			DestinationAccount: dest,
		})
	}
	return req
}

func (s *BatchServiceTestSuite) TestCreateBatch() {
	batch, err := s.svc.Batch.CreateBatch(s.ctx, s.transferBatch("100", "50.25"), testActor)
	s.Require().NoError(err)
	s.Equal(domain.BatchValidated, batch.State)
	s.Regexp(`^BAT\d{6}$`, batch.Reference)
	s.Equal(2, batch.TotalLines)
	s.True(batch.TotalAmount.Equal(dec("150.25")))
	s.Require().Len(batch.Lines, 2)
	s.Equal(s.payroll.AccountID, batch.Lines[0].AccountID)
	s.Equal(s.employee.AccountID, *batch.Lines[0].DestinationAccountID)
	s.Equal(s.other.AccountID, *batch.Lines[1].DestinationAccountID)
	for _, l := range batch.Lines {
		s.Equal(domain.LinePending, l.State)
	}

	stored, err := s.svc.Batch.GetBatch(s.ctx, batch.BatchID)
	s.Require().NoError(err)
	s.Len(stored.Lines, 2)
	s.Equal(1, stored.Lines[0].RowNumber)
}

func (s *BatchServiceTestSuite) TestValidateRows_Errors() {
	good := domain.BatchRow{RowNumber: 1, Account: s.payroll.AccountNumber, Amount: "1", Reference: "R1", DestinationAccount: s.employee.AccountNumber}
	cases := []struct {
		name   string
		kind   domain.BatchKind
		mutate func(r *domain.BatchRow)
		want   error
		field  string
	}{
		{"missing reference", domain.BatchTransfer, func(r *domain.BatchRow) { r.Reference = "" }, apperrors.ErrMissingField, "reference"},
		{"blank account", domain.BatchTransfer, func(r *domain.BatchRow) { r.Account = "  " }, apperrors.ErrMissingField, "account_number"},
		{"missing destination", domain.BatchTransfer, func(r *domain.BatchRow) { r.DestinationAccount = "" }, apperrors.ErrMissingField, "destination_account"},
		{"bad amount", domain.BatchTransfer, func(r *domain.BatchRow) { r.Amount = "ten" }, apperrors.ErrInvalidAmount, "amount"},
		{"negative amount", domain.BatchTransfer, func(r *domain.BatchRow) { r.Amount = "-3" }, apperrors.ErrInvalidAmount, "amount"},
		{"unknown account", domain.BatchTransfer, func(r *domain.BatchRow) { r.Account = "ACC999999" }, apperrors.ErrAccountNotFound, "account_number"},
		{"unknown destination", domain.BatchTransfer, func(r *domain.BatchRow) { r.DestinationAccount = "ACC999999" }, apperrors.ErrAccountNotFound, "destination_account"},
		{"destination on deposit batch", domain.BatchDeposit, func(r *domain.BatchRow) {}, apperrors.ErrValidation, "destination_account"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			second := good
			second.RowNumber = 2
			tc.mutate(&second)

			_, err := s.svc.Batch.ValidateRows(s.ctx, tc.kind, []domain.BatchRow{good, second})
			s.Require().ErrorIs(err, tc.want)

			var rowErr *apperrors.RowError
			s.Require().True(errors.As(err, &rowErr))
			if tc.kind == domain.BatchDeposit {
				s.Equal(1, rowErr.Row)
			} else {
				s.Equal(2, rowErr.Row)
			}
			s.Contains(rowErr.Fields, tc.field)
		})
	}

	_, err := s.svc.Batch.ValidateRows(s.ctx, "bonus", []domain.BatchRow{good})
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.svc.Batch.ValidateRows(s.ctx, domain.BatchTransfer, nil)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *BatchServiceTestSuite) TestProcessBatch_PartialFailure() {
	// The third line exceeds what is left on the payroll account
	batch, err := s.svc.Batch.CreateBatch(s.ctx, s.transferBatch("200", "250", "100"), testActor)
	s.Require().NoError(err)

	done, err := s.svc.Batch.ProcessBatch(s.ctx, batch.BatchID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.BatchFailed, done.State)
	s.Equal(3, done.ProcessedCount)
	s.Equal(2, done.SuccessCount)
	s.Equal(1, done.FailedCount)
	s.True(strings.HasPrefix(done.ErrorLog, "Line 3: "), done.ErrorLog)
	s.Contains(done.ErrorLog, apperrors.ErrInsufficientFunds.Error())
	s.Equal(testActor, done.ProcessedBy)
	s.NotNil(done.ProcessedAt)

	s.Equal(domain.LineProcessed, done.Lines[0].State)
	s.NotNil(done.Lines[0].TransactionID)
	s.Equal(domain.LineFailed, done.Lines[2].State)
	s.Nil(done.Lines[2].TransactionID)

	s.requireBalance(s.payroll.AccountID, "50")
	s.requireBalance(s.employee.AccountID, "200")
	s.requireBalance(s.other.AccountID, "250")
	s.Len(s.events.OfType(domain.EventBatchProcessed), 1)

	_, err = s.svc.Batch.ProcessBatch(s.ctx, batch.BatchID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
}

func (s *BatchServiceTestSuite) TestProcessBatch_SalaryCreditsEmployees() {
	batch, err := s.svc.Batch.CreateBatch(s.ctx, dto.CreateBatchRequest{
		Kind:         domain.BatchSalary,
		CurrencyCode: "USD",
		Rows: []dto.BatchRowRequest{
			{Account: s.employee.AccountNumber, Amount: "1200", Reference: "SAL-1"},
			{Account: s.other.AccountNumber, Amount: "800", Reference: "SAL-2"},
		},
	}, testActor)
	s.Require().NoError(err)

	done, err := s.svc.Batch.ProcessBatch(s.ctx, batch.BatchID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.BatchCompleted, done.State)
	s.Empty(done.ErrorLog)
	s.requireBalance(s.employee.AccountID, "1200")
	s.requireBalance(s.other.AccountID, "800")

	txn, err := s.svc.Transaction.GetTransaction(s.ctx, *done.Lines[0].TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TxDeposit, txn.TransactionType)
	s.Equal("SAL-1", txn.Reference)
}

func (s *BatchServiceTestSuite) TestImportBatchCSV() {
	csv := "account_number,amount,reference,description\n" +
		s.employee.AccountNumber + ",10.50,DEP-1,first\n" +
		"\n" +
		s.other.AccountNumber + ",4.50,DEP-2,\n"

	batch, err := s.svc.Batch.ImportBatchCSV(s.ctx, dto.ImportBatchParams{Kind: domain.BatchDeposit, CurrencyCode: "usd"}, strings.NewReader(csv), testActor)
	s.Require().NoError(err)
	s.Equal("USD", batch.CurrencyCode)
	s.Require().Len(batch.Lines, 2)
	s.Equal(2, batch.Lines[0].RowNumber)
	s.Equal(4, batch.Lines[1].RowNumber)
	s.True(batch.TotalAmount.Equal(dec("15")))

	bad := "account_number,amount,reference\n" + s.employee.AccountNumber + ",abc,DEP-1\n"
	_, err = s.svc.Batch.ImportBatchCSV(s.ctx, dto.ImportBatchParams{Kind: domain.BatchDeposit, CurrencyCode: "USD"}, strings.NewReader(bad), testActor)
	s.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *BatchServiceTestSuite) TestCancelBatch() {
	batch, err := s.svc.Batch.CreateBatch(s.ctx, s.transferBatch("1"), testActor)
	s.Require().NoError(err)

	cancelled, err := s.svc.Batch.CancelBatch(s.ctx, batch.BatchID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.BatchCancelled, cancelled.State)

	_, err = s.svc.Batch.ProcessBatch(s.ctx, batch.BatchID, testActor)
	s.ErrorIs(err, apperrors.ErrInvalidState)
	s.requireBalance(s.payroll.AccountID, "500")
}

// cancelAfterLines cancels the run once n lines have been recorded.
type cancelAfterLines struct {
	metrics.NoOpRecorder
	mu     sync.Mutex
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfterLines) RecordBatchLine(domain.BatchKind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n--
	if c.n == 0 {
		c.cancel()
	}
}

func (s *BatchServiceTestSuite) TestProcessBatch_CancelledBetweenLinesResumes() {
	batch, err := s.svc.Batch.CreateBatch(s.ctx, s.transferBatch("10", "20", "30"), testActor)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	interrupted := services.NewBatchService(s.store,
		services.WithClock(s.clock),
		services.WithMetricsRecorder(&cancelAfterLines{n: 1, cancel: cancel}),
	)

	partial, err := interrupted.ProcessBatch(ctx, batch.BatchID, testActor)
	s.Require().ErrorIs(err, context.Canceled)
	s.Require().NotNil(partial)
	s.Equal(domain.BatchProcessing, partial.State)
	s.Equal(1, partial.ProcessedCount)
	s.requireBalance(s.payroll.AccountID, "490")

	done, err := s.svc.Batch.ProcessBatch(s.ctx, batch.BatchID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.BatchCompleted, done.State)
	s.Equal(3, done.SuccessCount)
	s.requireBalance(s.payroll.AccountID, "440")
}

// onFirstFailure runs fn once, after a line fails and before the failure
// is recorded.
type onFirstFailure struct {
	metrics.NoOpRecorder
	once sync.Once
	fn   func()
}

func (o *onFirstFailure) RecordBatchLine(_ domain.BatchKind, success bool) {
	if !success {
		o.once.Do(o.fn)
	}
}

func (s *BatchServiceTestSuite) TestProcessBatch_LateFailureDoesNotOverwriteConcurrentRun() {
	batch, err := s.svc.Batch.CreateBatch(s.ctx, s.transferBatch("600"), testActor)
	s.Require().NoError(err)

	// A second run posts the line between the first run's failure and its
	// attempt to record that failure.
	hook := &onFirstFailure{fn: func() {
		_, err := s.svc.Account.Deposit(s.ctx, s.payroll.AccountID, dto.MoneyMovementRequest{Amount: dec("200")}, testActor)
		s.Require().NoError(err)
		other, err := s.svc.Batch.ProcessBatch(s.ctx, batch.BatchID, "teller-2")
		s.Require().NoError(err)
		s.Equal(domain.BatchCompleted, other.State)
	}}
	first := services.NewBatchService(s.store,
		services.WithClock(s.clock),
		services.WithMetricsRecorder(hook),
	)

	done, err := first.ProcessBatch(s.ctx, batch.BatchID, testActor)
	s.Require().NoError(err)
	s.Equal(domain.BatchCompleted, done.State)
	s.Equal(1, done.SuccessCount)
	s.Zero(done.FailedCount)
	s.Empty(done.ErrorLog)
	s.Equal(domain.LineProcessed, done.Lines[0].State)
	s.Require().NotNil(done.Lines[0].TransactionID)

	s.requireBalance(s.payroll.AccountID, "100")
	s.requireBalance(s.employee.AccountID, "600")
}

func TestBatchService(t *testing.T) {
	suite.Run(t, new(BatchServiceTestSuite))
}
